package device

import (
	"meterbind/pkg/protocol/ade7880"
	v1 "meterbind/pkg/v1"
)

var DeviceManagers = map[string]DeviceManager{
	v1.DeviceTypeADE7880: &ade7880.ADE7880DeviceManager{},
}

const (
	DefaultI2CFrequency uint = 50000
	i2cDeviceType            = "i2c"
)
