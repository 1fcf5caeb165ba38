package options

import (
	"time"

	"github.com/spf13/pflag"
	"meterbind/cmd/meterbind/config"
	"meterbind/pkg/board"
	"meterbind/pkg/build"
	"meterbind/pkg/device"
	baseoptions "meterbind/pkg/generic/options"
	"meterbind/pkg/storage"
)

type Options struct {
	Port     string        `json:"port"`
	Wait     time.Duration `json:"graceful-timeout"`
	Board    string        `json:"board"`
	Manifest string        `json:"manifest,omitempty"`
	Output   string        `json:"output,omitempty"`
	CertFile string        `json:"cert-file,omitempty"`
	KeyFile  string        `json:"key-file,omitempty"`
	StoreDir string        `json:"store-dir,omitempty"`
	baseoptions.BaseOptions
}

const (
	_defaultPort   = "32200"
	_defaultWait   = 15 * time.Second
	_defaultOutput = "-"
)

func NewDefaultOptions() *Options {
	return &Options{
		Port:        _defaultPort,
		Wait:        _defaultWait,
		Board:       board.DefaultBoard,
		Output:      _defaultOutput,
		BaseOptions: baseoptions.NewDefaultBaseOptions(),
	}
}

func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Port, "port", "P", o.Port, "Port the build API listens on")
	fs.DurationVar(&o.Wait, "graceful-timeout", o.Wait, "The duration for which the server gracefully wait for existing connections to finish - e.g. 15s or 1m")
	fs.StringVarP(&o.Board, "board", "b", o.Board, "Target board used when a manifest does not name one")
	fs.StringVarP(&o.Manifest, "manifest", "m", o.Manifest, "Generate the program of this manifest and exit instead of serving the build API")
	fs.StringVarP(&o.Output, "output", "o", o.Output, `File the generated program is written to, "-" for stdout`)
	fs.StringVar(&o.CertFile, "cert-file", o.CertFile, "TLS certificate of the build API")
	fs.StringVar(&o.KeyFile, "key-file", o.KeyFile, "TLS key of the build API")
	fs.StringVar(&o.StoreDir, "store-dir", o.StoreDir, "Existing directory the build API keeps its builds in, builds are kept in memory only when empty")
}

// Serving reports whether the command runs the build API.
func (o *Options) Serving() bool {
	return len(o.Manifest) == 0
}

func (o *Options) Config() (*config.Config, error) {
	deviceMgr := device.NewManager(device.WithBoard(o.Board))
	var buildOpts []build.Option
	if o.Serving() && len(o.StoreDir) > 0 {
		fc, err := storage.NewFsClient(o.StoreDir, storage.StoreGroupBuild)
		if err != nil {
			return nil, err
		}
		buildOpts = append(buildOpts, build.WithStore(fc))
	}
	buildMgr := build.NewManager(deviceMgr, buildOpts...)
	if err := buildMgr.Load(); err != nil {
		return nil, err
	}
	return &config.Config{
		DeviceMgr: deviceMgr,
		BuildMgr:  buildMgr,
		CertFile:  o.CertFile,
		KeyFile:   o.KeyFile,
	}, nil
}
