package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/radsplat/build-lod/internal/errs"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "build-lod"
	myApp.Usage = "build and encode level-of-detail trees for Gaussian splat scenes"
	myApp.ArgsUsage = "<file> [<file>...]"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "unlod",
			Usage: "drop interior nodes (keep only leaves); replace -lod suffix with plain",
		},
		cli.BoolFlag{
			Name:  "csplat",
			Usage: "recorded in the build config only; the LoD tree is always built over the full-precision splat container",
		},
		cli.BoolFlag{
			Name:  "gsplat",
			Usage: "build the LoD tree over the full-precision splat container (default)",
		},
		cli.BoolFlag{
			Name:  "quick",
			Usage: "use the tiny-lod builder with its default base (1.5)",
		},
		cli.BoolFlag{
			Name:  "quality",
			Usage: "use the Bhatt-LoD builder with its default base (1.75)",
		},
		cli.BoolFlag{
			Name:  "tiny-lod",
			Usage: "use the tiny-lod builder",
		},
		cli.Float64Flag{
			Name:  "tiny-lod-base",
			Usage: "explicit tiny-lod base in [1.1, 2.0] (implies --tiny-lod)",
		},
		cli.BoolFlag{
			Name:  "bhatt-lod",
			Usage: "use the Bhatt-LoD builder",
		},
		cli.Float64Flag{
			Name:  "bhatt-lod-base",
			Usage: "explicit Bhatt-LoD base in [1.1, 2.0] (implies --bhatt-lod)",
		},
		cli.IntFlag{
			Name:  "max-sh",
			Value: -1,
			Usage: "clamp SH degree to N in {0,1,2,3}, -1 to leave as-is",
		},
		cli.BoolFlag{
			Name:  "rad",
			Usage: "write a RAD container (default)",
		},
		cli.BoolFlag{
			Name:  "spz",
			Usage: "recorded in the build config only; the output is always a RAD container",
		},
		cli.BoolFlag{
			Name:  "spz-chunked",
			Usage: "recorded in the build config only; the output is always a RAD container",
		},
		cli.StringFlag{
			Name:  "min-box",
			Usage: `axis-aligned crop lower bound, "x,y,z"`,
		},
		cli.StringFlag{
			Name:  "max-box",
			Usage: `axis-aligned crop upper bound, "x,y,z"`,
		},
		cli.StringFlag{
			Name:  "within-dist",
			Usage: `spherical crop, "x,y,z,r"`,
		},
		cli.BoolFlag{
			Name:  "skip-validate",
			Usage: "skip the NaN/Inf pre-scan; non-finite splats are dropped instead of aborting the file",
		},
		cli.StringFlag{
			Name:  "prune-metric",
			Value: "area",
			Usage: "importance metric the tree pruner ranks interior nodes by: area, feature_size",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "",
			Usage: "config from json file, which will override the command from shell",
		},
	}

	myApp.Action = func(c *cli.Context) error {
		config := Config{
			Unlod:        c.Bool("unlod"),
			Csplat:       c.Bool("csplat"),
			Format:       outputFormat(c),
			Builder:      "bhatt-lod",
			Base:         1.75,
			MaxSH:        c.Int("max-sh"),
			MinBox:       c.String("min-box"),
			MaxBox:       c.String("max-box"),
			WithinDist:   c.String("within-dist"),
			SkipValidate: c.Bool("skip-validate"),
			PruneMetric:  c.String("prune-metric"),
			Log:          c.String("log"),
		}

		if c.Bool("quick") {
			config.Builder, config.Base = "tiny-lod", 1.5
		}
		if c.Bool("quality") {
			config.Builder, config.Base = "bhatt-lod", 1.75
		}
		if c.Bool("tiny-lod") || c.IsSet("tiny-lod-base") {
			config.Builder, config.Base = "tiny-lod", 1.5
			if c.IsSet("tiny-lod-base") {
				config.Base = c.Float64("tiny-lod-base")
			}
		}
		if c.Bool("bhatt-lod") || c.IsSet("bhatt-lod-base") {
			config.Builder, config.Base = "bhatt-lod", 1.75
			if c.IsSet("bhatt-lod-base") {
				config.Base = c.Float64("bhatt-lod-base")
			}
		}

		if c.String("c") != "" {
			if err := parseJSONConfig(&config, c.String("c")); err != nil {
				return configError(err)
			}
		}

		if config.Base < 1.1 || config.Base > 2.0 {
			return configError(fmt.Errorf("builder base %v out of range [1.1, 2.0]", config.Base))
		}
		if config.MaxSH > 3 {
			return configError(fmt.Errorf("max-sh %d out of range {0,1,2,3}", config.MaxSH))
		}

		if config.Log != "" {
			f, err := os.OpenFile(config.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				return configError(err)
			}
			defer f.Close()
			log.SetOutput(f)
		}

		log.Println("version:", VERSION)
		log.Println("builder:", config.Builder, "base:", config.Base)
		log.Println("format:", config.Format)
		log.Println("max-sh:", config.MaxSH)
		log.Println("unlod:", config.Unlod)

		if c.NArg() == 0 {
			return configError(fmt.Errorf("no input files given"))
		}

		hadError := false
		for _, path := range c.Args() {
			if err := ProcessFile(path, config); err != nil {
				hadError = true
				log.Printf("%s: %+v", path, err)
				if !isPerFileError(err) {
					os.Exit(1)
				}
			}
		}
		if hadError {
			os.Exit(1)
		}
		return nil
	}

	if err := myApp.Run(os.Args); err != nil {
		log.Printf("%+v\n", err)
		os.Exit(1)
	}
}

func outputFormat(c *cli.Context) string {
	switch {
	case c.Bool("spz-chunked"):
		return "spz-chunked"
	case c.Bool("spz"):
		return "spz"
	default:
		return "rad"
	}
}

func configError(err error) error {
	return errs.New(errs.Config, err)
}

func isPerFileError(err error) bool {
	e, ok := err.(*errs.Error)
	if !ok {
		return false
	}
	return errs.PerFile(e.Kind)
}
