package main

import (
	"os"
	"time"
)

// fileStamp records what the backing file looked like after our last load or save
type fileStamp struct {
	ModTime time.Time
	Size    int64
	Exists  bool
}

func statStamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{ModTime: info.ModTime(), Size: info.Size(), Exists: true}
}

// differs reports whether the file on disk no longer matches the stamp
func (s fileStamp) differs(path string) bool {
	current := statStamp(path)
	if current.Exists != s.Exists {
		return true
	}
	return current.Size != s.Size || !current.ModTime.Equal(s.ModTime)
}
