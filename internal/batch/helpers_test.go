package batch

import "github.com/memgraph/mgconsole/internal/query"

func dummyQuery(i int) query.Query {
	return query.Query{Text: "STATEMENT", Line: i + 1, Index: uint64(i)}
}

func vertexQuery(i int) query.Query {
	q := dummyQuery(i)
	q.Info = &query.QueryInfo{HasCreate: true}
	return q
}

func edgeQuery(i int) query.Query {
	q := dummyQuery(i)
	q.Info = &query.QueryInfo{HasCreate: true, HasMatch: true}
	return q
}

func preQuery(i int) query.Query {
	q := dummyQuery(i)
	q.Info = &query.QueryInfo{HasCreateIndex: true}
	return q
}

func postQuery(i int) query.Query {
	q := dummyQuery(i)
	q.Info = &query.QueryInfo{HasDropIndex: true}
	return q
}
