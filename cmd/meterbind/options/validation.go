package options

import (
	"fmt"
	"os"
	"strconv"

	"meterbind/pkg/board"
)

func Validate(o *Options) []error {
	var errs []error
	if err := o.BaseOptions.ValidateAndApply(); err != nil {
		errs = append(errs, err)
	}
	if _, ok := board.Lookup(o.Board); !ok {
		errs = append(errs, fmt.Errorf("--board: unsupported board %q, expected one of %v", o.Board, board.Names()))
	}
	if o.Serving() {
		if port, err := strconv.Atoi(o.Port); err != nil || port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("--port: %q is not a valid port", o.Port))
		}
		if o.Wait <= 0 {
			errs = append(errs, fmt.Errorf("--graceful-timeout: must be positive"))
		}
		if (len(o.CertFile) == 0) != (len(o.KeyFile) == 0) {
			errs = append(errs, fmt.Errorf("--cert-file and --key-file must be set together"))
		}
		if len(o.StoreDir) > 0 {
			if info, err := os.Stat(o.StoreDir); err != nil {
				errs = append(errs, fmt.Errorf("--store-dir: %v", err))
			} else if !info.IsDir() {
				errs = append(errs, fmt.Errorf("--store-dir: %q is not a directory", o.StoreDir))
			}
		}
	} else if len(o.Output) == 0 {
		errs = append(errs, fmt.Errorf("--output: required with --manifest"))
	}
	return errs
}
