package storage

import (
	"time"
)

type StoreGroup byte

const (
	StoreGroupBuild StoreGroup = iota
)

var (
	StoreGroupToString = map[StoreGroup]string{
		StoreGroupBuild: "build",
	}
)

// resources
const (
	// build
	Builds = "builds"
)

type Getter interface {
	Get(key string) ([]byte, error)
}

type Lister interface {
	List(key string) ([]*FileInfo, error)
}

type Creater interface {
	Create(key string, obj interface{}) (interface{}, error)
}

type Deleter interface {
	Delete(key, version string) error
}

type Storage interface {
	Getter
	Lister
	Creater
	Deleter
}

type FileInfo struct {
	Path    string
	ModTime time.Time
}
