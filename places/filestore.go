package places

import (
	"hushmap/data"
)

// FileStore persists cache entries as JSON files in the local data
// directory, one file per key.
type FileStore struct{}

func (FileStore) fileKey(key string) string {
	return "places/" + key + ".json"
}

func (s FileStore) Get(key string) (Entry, bool) {
	var e Entry
	if err := data.LoadJSON(s.fileKey(key), &e); err != nil {
		return Entry{}, false
	}
	return e, true
}

func (s FileStore) Put(key string, e Entry) error {
	return data.SaveJSON(s.fileKey(key), e)
}
