package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3 lists every object under prefix in bucket, in key order, and
// concatenates their bodies into one tokenizer stream, exactly as if the
// objects had been catenated on disk and fed to NewStdin. Objects are
// fetched lazily, one at a time, as the tokenizer drains prior objects —
// the whole bucket is never held in memory at once.
func NewS3(ctx context.Context, client *s3.Client, bucket, prefix string) (StatementSource, error) {
	keys, err := listS3Keys(ctx, client, bucket, prefix)
	if err != nil {
		return nil, err
	}

	objIdx := 0
	var scanner *bufio.Scanner

	return newLineSource(func() (string, bool, error) {
		for {
			if scanner != nil {
				if scanner.Scan() {
					return scanner.Text(), true, nil
				}
				if err := scanner.Err(); err != nil {
					return "", false, fmt.Errorf("source: reading s3://%s/%s: %w", bucket, keys[objIdx-1], err)
				}
				scanner = nil
			}
			if objIdx >= len(keys) {
				return "", false, nil
			}

			key := keys[objIdx]
			objIdx++
			out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
			if err != nil {
				return "", false, fmt.Errorf("source: fetching s3://%s/%s: %w", bucket, key, err)
			}
			body, err := io.ReadAll(out.Body)
			out.Body.Close()
			if err != nil {
				return "", false, fmt.Errorf("source: reading s3://%s/%s: %w", bucket, key, err)
			}
			scanner = bufio.NewScanner(bytes.NewReader(body))
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		}
	}), nil
}

func listS3Keys(ctx context.Context, client *s3.Client, bucket, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("source: listing s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || len(*obj.Key) == 0 || (*obj.Key)[len(*obj.Key)-1] == '/' {
				continue
			}
			keys = append(keys, *obj.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
