package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/voidshard/levelgen"
)

// printBaker stands in for a real nav mesh baker, it just reports what it
// would have been given.
type printBaker struct{}

func (printBaker) Bake(geom *levelgen.StaticGeometry) error {
	fmt.Printf("navmesh: %d road tiles, %d obstacles\n", len(geom.Roads), len(geom.Obstacles))
	return nil
}

func loadConfig(path string) (*levelgen.LevelConfig, error) {
	if path == "" {
		return levelgen.DefaultConfig(), nil
	}
	return levelgen.LoadConfig(path)
}

func runGenerate(path string, seed int64, out string, scale float64) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	lvl, err := levelgen.New(cfg, printBaker{})
	if err != nil {
		return err
	}

	printStats(lvl)

	err = os.MkdirAll(out, 0755)
	if err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	jsonPath := filepath.Join(out, fmt.Sprintf("level.%d.json", lvl.Seed))
	err = lvl.SaveJSON(jsonPath)
	if err != nil {
		return errors.Wrap(err, "writing level json")
	}

	m, err := lvl.Map(scale)
	if err != nil {
		return err
	}
	pngPath := filepath.Join(out, fmt.Sprintf("level.%d.png", lvl.Seed))
	err = m.SaveAdv(pngPath, levelgen.DefaultScheme())
	if err != nil {
		return errors.Wrap(err, "writing level png")
	}

	fmt.Printf("wrote %s %s\n", jsonPath, pngPath)
	return nil
}

func runValidate(path string) error {
	cfg, err := levelgen.LoadConfig(path)
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d jobs)\n", path, len(cfg.Jobs))
	return nil
}

func runCurve(seed int64, out string, width, height, roadWidth float64, horizontal bool) error {
	cfg := &levelgen.CurveConfig{
		Bounds: levelgen.MapBounds{Width: width, Height: height},
		Axis:   levelgen.Vertical,
		Width:  roadWidth,
		Inset:  roadWidth,
		Seed:   seed,
	}
	if horizontal {
		cfg.Axis = levelgen.Horizontal
	}

	road, err := levelgen.NewCurvedRoad(cfg)
	if err != nil {
		return err
	}

	err = os.MkdirAll(out, 0755)
	if err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	data, err := json.Marshal(road)
	if err != nil {
		return err
	}
	jsonPath := filepath.Join(out, fmt.Sprintf("curve.%d.json", cfg.Seed))
	err = ioutil.WriteFile(jsonPath, data, 0644)
	if err != nil {
		return errors.Wrap(err, "writing curve json")
	}

	pngPath := filepath.Join(out, fmt.Sprintf("curve.%d.png", cfg.Seed))
	err = road.Render(pngPath)
	if err != nil {
		return errors.Wrap(err, "writing curve png")
	}

	fmt.Printf("curve: length %.2f, %d triangles\nwrote %s %s\n", road.Length(), len(road.Triangles), jsonPath, pngPath)
	return nil
}

func runSchema(out string) error {
	data, err := levelgen.SchemaJSON()
	if err != nil {
		return err
	}
	if out == "" {
		fmt.Println(string(data))
		return nil
	}
	return ioutil.WriteFile(out, append(data, '\n'), 0644)
}

func printStats(lvl *levelgen.Level) {
	fmt.Printf("==stats==\nseed: %d\nroads: %d tiles, %d side roads\n", lvl.Seed, lvl.Stats.RoadTiles, lvl.Stats.SideRoads)
	for _, c := range levelgen.AllCategories() {
		n := lvl.Stats.Count(c)
		if n == 0 {
			continue
		}
		fmt.Printf("\t%s: %d\n", c, n)
	}
	for job, n := range lvl.Stats.SkippedByJob {
		fmt.Printf("\tskipped %d from %s\n", n, job)
	}
}
