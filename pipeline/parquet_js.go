//go:build js

package pipeline

import "fmt"

var errParquetUnavailable = fmt.Errorf("parquet output is not available in browser builds (use format csv)")

func marshalFixesParquet(samples []FixSample) ([]byte, error) {
	return nil, errParquetUnavailable
}

func writeFixesParquet(path string, samples []FixSample) error {
	return errParquetUnavailable
}
