package config

import (
	"meterbind/pkg/build"
	"meterbind/pkg/device"
)

type Config struct {
	DeviceMgr *device.Manager
	BuildMgr  *build.Manager
	CertFile  string
	KeyFile   string
}
