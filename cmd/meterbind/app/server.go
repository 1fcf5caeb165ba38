package app

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	utilserrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"meterbind/cmd/meterbind/config"
	"meterbind/cmd/meterbind/options"
	"meterbind/pkg/codegen"
	"meterbind/pkg/device"
	"meterbind/pkg/generic"
	baseoptions "meterbind/pkg/generic/options"
	"meterbind/pkg/web"
)

const (
	ComponentMeterbind = "meterbind"
)

func NewMeterbindCmd() *cobra.Command {
	cleanFlagSet := pflag.NewFlagSet(ComponentMeterbind, pflag.ContinueOnError)
	o := options.NewDefaultOptions()
	cmd := &cobra.Command{
		Use: ComponentMeterbind,
		Long: `meterbind validates ADE7880 energy meter descriptions and generates the firmware code that wires them up.
With --manifest it writes the program of one manifest and exits, otherwise it serves the build API.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// initial flag parse, since we disable cobra's flag parsing
			if err := cleanFlagSet.Parse(args); err != nil {
				klog.ErrorS(err, "Failed to parse flag")
				_ = cmd.Usage()
				os.Exit(1)
			}

			// check if there are non-flag arguments in the command line
			cmds := cleanFlagSet.Args()
			if len(cmds) > 0 {
				klog.ErrorS(nil, "Unknown command", "command", cmds[0])
				_ = cmd.Usage()
				os.Exit(1)
			}

			// short-circuit on help
			baseoptions.PrintHelpAndExitIfRequested(cmd, cleanFlagSet)

			// short-circuit on defaultconfig
			baseoptions.PrintDefaultConfigAndExitIfRequested(options.NewDefaultOptions(), cleanFlagSet)

			if err := baseoptions.ParseAndApplyConfigFile(o, args); err != nil {
				return err
			}

			if errs := options.Validate(o); len(errs) != 0 {
				return utilserrors.NewAggregate(errs)
			}

			c, err := o.Config()
			if err != nil {
				return err
			}
			if !o.Serving() {
				return generate(c, o.Manifest, o.Output)
			}
			return serve(c, o)
		},
	}

	o.AddFlags(cleanFlagSet)
	o.AddBaseFlags(cmd, cleanFlagSet)

	return cmd
}

// generate writes the program of one manifest file to output.
func generate(c *config.Config, manifestPath string, output string) error {
	manifest, err := device.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	res, err := c.DeviceMgr.Build(manifest)
	if err != nil {
		if agg, ok := err.(utilserrors.Aggregate); ok {
			for _, e := range agg.Errors() {
				klog.ErrorS(e, "Invalid manifest", "file", manifestPath)
			}
		}
		return err
	}

	if output == "-" {
		if err := res.Program.Render(os.Stdout); err != nil {
			return err
		}
	} else if err := writeProgram(res.Program, output); err != nil {
		return err
	}
	klog.V(1).InfoS("Generated program", "manifest", manifestPath, "output", output, "devices", len(res.Bindings))
	return nil
}

var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeProgram renders p into the file at path. A failed close is a failed
// write.
func writeProgram(p *codegen.Program, path string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return p.Render(f)
}

func serve(c *config.Config, o *options.Options) error {
	server, err := web.NewServer(generic.Default(), o.Port, c)
	if err != nil {
		return err
	}

	exit, err := server.Serve()
	if err != nil {
		return err
	}
	klog.V(1).InfoS("Server started", "port", o.Port)
	// Wait for interrupt signal to gracefully shutdown the server
	exitCh := make(chan os.Signal, 1)
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be catch, so don't need add it
	signal.Notify(exitCh, syscall.SIGINT, syscall.SIGTERM)
	<-exitCh
	ctx, cancel := context.WithTimeout(context.Background(), o.Wait)
	defer cancel()

	exit(ctx)
	return nil
}
