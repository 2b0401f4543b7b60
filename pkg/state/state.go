// Package state persists the single durable value this tool owns: the
// timestamp of the last successful publish, which bounds the next scan.
package state

import (
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const field = "last_upload"

// Read returns the stored timestamp in unix seconds. A missing or
// unreadable file means no prior run and yields zero.
func Read(path string) int64 {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return gjson.GetBytes(raw, field).Int()
}

// Write stores ts as the new last-processed timestamp.
func Write(path string, ts int64) error {
	doc, err := sjson.Set("", field, ts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0644)
}
