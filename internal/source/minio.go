package source

import (
	"bufio"
	"context"
	"fmt"
	"sort"

	"github.com/minio/minio-go/v7"
)

// NewMinIO reads each named object from a MinIO-compatible bucket, in name
// order (the given names are sorted first), and concatenates their bodies into one tokenizer stream —
// the same lazy-fetch, one-object-at-a-time approach as NewS3, adapted to
// the MinIO SDK's path-style client instead of the AWS SDK.
func NewMinIO(ctx context.Context, client *minio.Client, bucket string, objectNames []string) StatementSource {
	names := append([]string(nil), objectNames...)
	sort.Strings(names)

	objIdx := 0
	var scanner *bufio.Scanner

	return newLineSource(func() (string, bool, error) {
		for {
			if scanner != nil {
				if scanner.Scan() {
					return scanner.Text(), true, nil
				}
				if err := scanner.Err(); err != nil {
					return "", false, fmt.Errorf("source: reading %s/%s: %w", bucket, names[objIdx-1], err)
				}
				scanner = nil
			}
			if objIdx >= len(names) {
				return "", false, nil
			}

			name := names[objIdx]
			objIdx++
			obj, err := client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
			if err != nil {
				return "", false, fmt.Errorf("source: fetching %s/%s: %w", bucket, name, err)
			}
			scanner = bufio.NewScanner(obj)
			scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		}
	})
}
