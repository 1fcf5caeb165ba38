// Package fileutil holds advisory file locks.
package fileutil

type Releaser interface {
	Release() error
}
