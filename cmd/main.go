package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	tvs "github.com/tombh/total-viewsheds"
	"github.com/tombh/total-viewsheds/input"
	"github.com/tombh/total-viewsheds/output"
	"github.com/tombh/total-viewsheds/search"
)

// runTVS executes one full total-viewshed computation over a single DEM
// file, writing a PNG heatmap and a JSON manifest to the output directory,
// and optionally printing an ASCII viewshed debug dump to stdout. asciiPOV,
// if non-negative, selects a single computable point to reconstruct and
// print as ASCII art.
func runTVS(cfg *tvs.Config, asciiPOV int64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Println("Loading DEM:", cfg.Input)
	loaded, err := input.Load(cfg.Input, cfg.ConfigURI, false, cfg.ScaleOverride, cfg.OriginLat)
	if err != nil {
		return err
	}

	maxLineOfSight := cfg.MaxLineOfSight
	if maxLineOfSight == 0 {
		maxLineOfSight = uint32(float64(loaded.Width) * float64(loaded.Scale) / 3.0)
	}

	dem, err := tvs.NewDEM(loaded.Width, float32(loaded.Scale), maxLineOfSight)
	if err != nil {
		return err
	}
	dem.Elevations = loaded.Elevations
	if err := dem.Validate(); err != nil {
		return err
	}

	var cache *tvs.Cache
	if cfg.CacheDir != "" {
		cache, err = tvs.NewCache(cfg.CacheDir, cfg.ConfigURI)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	log.Println("Building sector driver")
	compute := tvs.NewCompute(dem, cfg.RingsPerKm, cfg.ObserverHeight, cache)
	compute.SectorShift = cfg.SectorShift
	defer compute.Stop()

	log.Println("Computing total viewshed surface across 180 sectors")
	totalSurfaces, sectorResults, err := compute.Run()
	if err != nil {
		return err
	}

	base := filenameWithoutExt(cfg.Input)
	heatmapPath := filepath.Join(cfg.OutputDir, base+"-tvs.png")
	log.Println("Writing heatmap:", heatmapPath)
	if err := output.SavePNG(totalSurfaces, dem.TVSWidth, dem.TVSWidth, heatmapPath); err != nil {
		return err
	}

	manifest := tvs.RunManifest{
		DEMPath:        cfg.Input,
		DEMWidth:       dem.Width,
		Scale:          loaded.Scale,
		MaxLineOfSight: dem.MaxLineOfSight,
		ObserverHeight: cfg.ObserverHeight,
		RingsPerKm:     cfg.RingsPerKm,
		ComputeBackend: cfg.Compute.String(),
	}
	manifestPath := filepath.Join(cfg.OutputDir, base+"-manifest.json")
	log.Println("Writing manifest:", manifestPath)
	if _, err := tvs.WriteJSON(manifestPath, cfg.ConfigURI, manifest); err != nil {
		return err
	}

	if asciiPOV >= 0 {
		povID := uint32(asciiPOV)
		allRingData := make([][]uint32, len(sectorResults))
		for i, sector := range sectorResults {
			allRingData[i] = sector.RingData
		}
		reserved := int(compute.Constants.ReservedRingsPerBand)
		rows, err := output.ReconstructASCII(dem.Width, dem.Size(), dem.ComputablePointsCount, povID, allRingData, reserved)
		if err != nil {
			return err
		}
		for _, row := range rows {
			fmt.Println(row)
		}
	}

	log.Println("Finished:", cfg.Input)

	return nil
}

// runTrawl searches uri for every DEM matching pattern and runs runTVS over
// each one concurrently, reusing the teacher's fixed-size pool convention.
func runTrawl(cfg *tvs.Config, uri string) error {
	log.Println("Searching uri:", uri)
	items, err := search.FindDEMs(uri, cfg.ConfigURI)
	if err != nil {
		return err
	}
	log.Println("Number of DEMs to process:", len(items))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, name := range items {
		item := name
		pool.Submit(func() {
			itemCfg := *cfg
			itemCfg.Input = item
			if err := runTVS(&itemCfg, -1); err != nil {
				log.Printf("failed processing %s: %v", item, err)
			}
		})
	}

	return nil
}

func filenameWithoutExt(uri string) string {
	base := filepath.Base(uri)
	return base[:len(base)-len(filepath.Ext(base))]
}

func configFromContext(cCtx *cli.Context) (*tvs.Config, error) {
	compute, err := tvs.ParseComputeType(cCtx.String("compute"))
	if err != nil {
		return nil, err
	}

	return &tvs.Config{
		Input:          cCtx.String("input"),
		ConfigURI:      cCtx.String("config-uri"),
		MaxLineOfSight: uint32(cCtx.Uint("max-line-of-sight")),
		RingsPerKm:     float32(cCtx.Float64("rings-per-km")),
		ObserverHeight: float32(cCtx.Float64("observer-height")),
		SectorShift:    cCtx.Float64("sector-shift"),
		Compute:        compute,
		OutputDir:      cCtx.String("output-dir"),
		CacheDir:       cCtx.String("cache-dir"),
		ScaleOverride:  cCtx.Float64("scale"),
		OriginLat:      cCtx.Float64("origin-lat"),
	}, nil
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config-uri",
			Usage: "URI or pathname to a TileDB config file.",
		},
		&cli.UintFlag{
			Name:  "max-line-of-sight",
			Usage: "The maximum expected line of sight in meters. Defaults to one third of the DEM width.",
		},
		&cli.Float64Flag{
			Name:  "rings-per-km",
			Usage: "Expected rings per km of band of sight.",
			Value: 5.0,
		},
		&cli.Float64Flag{
			Name:  "observer-height",
			Usage: "Height of observer in meters.",
			Value: 1.8,
		},
		&cli.Float64Flag{
			Name:  "sector-shift",
			Usage: "Degrees of offset for each sector, to avoid DEM point alignments.",
			Value: 0.001,
		},
		&cli.StringFlag{
			Name:  "compute",
			Usage: "The method of running the kernel: cpu, vulkan, cuda.",
			Value: "cpu",
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory to save the heatmap and manifest to.",
			Value: "./",
		},
		&cli.StringFlag{
			Name:  "cache-dir",
			Usage: "Directory to cache per-sector band deltas and distances in. Disabled if empty.",
		},
		&cli.Float64Flag{
			Name:  "scale",
			Usage: "Override the DEM's derived meters-per-cell scale.",
		},
		&cli.Float64Flag{
			Name:  "origin-lat",
			Usage: "Approximate latitude of the DEM, used to scale .hgt inputs.",
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "tvs",
		Usage: "Compute Total Viewshed Surfaces over a digital elevation model.",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Compute the total viewshed surface for a single DEM file.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Usage:    "Path to a .bt or .hgt DEM file.",
						Required: true,
					},
					&cli.UintFlag{
						Name:  "ascii-pov",
						Usage: "DEM id to reconstruct and print as an ASCII viewshed, for debugging.",
					},
				}, commonFlags()...),
				Action: func(cCtx *cli.Context) error {
					cfg, err := configFromContext(cCtx)
					if err != nil {
						return err
					}
					asciiPOV := int64(-1)
					if cCtx.IsSet("ascii-pov") {
						asciiPOV = int64(cCtx.Uint("ascii-pov"))
					}
					return runTVS(cfg, asciiPOV)
				},
			},
			{
				Name:  "trawl",
				Usage: "Run the total viewshed computation over every DEM found under a directory.",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "uri",
						Usage:    "URI or pathname to a directory containing DEM files.",
						Required: true,
					},
				}, commonFlags()...),
				Action: func(cCtx *cli.Context) error {
					cfg, err := configFromContext(cCtx)
					if err != nil {
						return err
					}
					return runTrawl(cfg, cCtx.String("uri"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(fmt.Errorf("tvs: %w", err))
	}
}
