// ibltool is a CLI utility for image-based lighting data and model assets.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MrShreyas/car/internal/config"
	"github.com/MrShreyas/car/internal/engine/debug"
	"github.com/MrShreyas/car/internal/engine/environment"
	"github.com/MrShreyas/car/internal/engine/gpu"
	"github.com/MrShreyas/car/internal/engine/lighting"
	"github.com/MrShreyas/car/internal/engine/material"
	"github.com/MrShreyas/car/internal/engine/model"
	"github.com/MrShreyas/car/internal/engine/texture"
	"github.com/MrShreyas/car/pkg/formats"
	"github.com/MrShreyas/car/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "brdf":
		cmdBRDF(args)
	case "sky":
		cmdSky(args)
	case "hdrinfo", "info":
		cmdHDRInfo(args)
	case "inspect", "model":
		cmdInspect(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ibltool - image-based lighting and model asset utility

Usage:
  ibltool <command> [options]

Commands:
  brdf [-size N] [-samples N] <out.png>     Integrate the split-sum BRDF lookup table
  sky [-size N] [-azimuth A] <out.png>      Render the procedural sky as a cube cross
  hdrinfo <file.hdr>                        Show Radiance HDR header and luminance
  inspect [-no-flip] <model>                Load a model without a GPU and list its meshes
  config [out.yaml]                         Write the default viewer config

Examples:
  ibltool brdf -size 256 brdf_lut.png
  ibltool sky -size 128 -sun 0.2,0.6,-0.4 sky.png
  ibltool sky -azimuth 120 -elevation 20 sunset.png
  ibltool hdrinfo resources/hdr/studio.hdr
  ibltool inspect resources/car/scene.gltf
  ibltool config config.yaml`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdBRDF(args []string) {
	defaults := environment.DefaultSettings()
	fs := flag.NewFlagSet("brdf", flag.ExitOnError)
	size := fs.Int("size", defaults.BRDFSize, "Table width and height")
	samples := fs.Int("samples", defaults.SampleCount, "Importance samples per texel")
	fs.Parse(args)

	if fs.NArg() < 1 || *size <= 0 || *samples <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: ibltool brdf [-size N] [-samples N] <out.png>")
		os.Exit(1)
	}

	lut := environment.BRDFLUT(*size, *samples)
	if err := debug.SavePNG(fs.Arg(0), environment.BRDFImage(lut, *size)); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %dx%d BRDF table (%d samples) to %s\n", *size, *size, *samples, fs.Arg(0))
}

func parseVec3(s string) (math.Vec3, error) {
	var v math.Vec3
	if _, err := fmt.Sscanf(s, "%g,%g,%g", &v.X, &v.Y, &v.Z); err != nil {
		return v, fmt.Errorf("invalid vector %q: want x,y,z", s)
	}
	if v.Length() == 0 {
		return v, fmt.Errorf("invalid vector %q: zero length", s)
	}
	return v.Normalize(), nil
}

func cmdSky(args []string) {
	defaults := environment.DefaultSettings()
	fs := flag.NewFlagSet("sky", flag.ExitOnError)
	size := fs.Int("size", defaults.EnvSizeProcedural, "Face width and height")
	exposure := fs.Float64("exposure", 1, "Tone-mapping exposure")
	sun := fs.String("sun", "", "Sun direction as x,y,z")
	azimuth := fs.Float64("azimuth", -1, "Sun azimuth in degrees, overrides -sun")
	elevation := fs.Float64("elevation", 45, "Sun elevation in degrees, used with -azimuth")
	fs.Parse(args)

	if fs.NArg() < 1 || *size <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: ibltool sky [-size N] [-exposure E] [-sun x,y,z | -azimuth A -elevation E] <out.png>")
		os.Exit(1)
	}

	sky := defaults.Sky
	if *sun != "" {
		dir, err := parseVec3(*sun)
		if err != nil {
			fail(err)
		}
		sky.SunDir = dir
	}
	if *azimuth >= 0 {
		sky.SunDir = lighting.SunDirection(float32(*azimuth), float32(*elevation))
	}
	az, el := lighting.SunAngles(sky.SunDir)

	img := environment.CrossImage(sky.Faces(*size), *size, float32(*exposure))
	if err := debug.SavePNG(fs.Arg(0), img); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %dx%d sky cross to %s (sun azimuth %.1f, elevation %.1f)\n",
		img.Bounds().Dx(), img.Bounds().Dy(), fs.Arg(0), az, el)
}

func cmdHDRInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ibltool hdrinfo <file.hdr>")
		os.Exit(1)
	}

	img, err := formats.LoadHDR(args[0])
	if err != nil {
		fail(err)
	}
	stats := img.Stats()

	fmt.Printf("File:       %s\n", args[0])
	fmt.Printf("Size:       %d x %d\n", img.Width, img.Height)
	fmt.Printf("Exposure:   %g\n", img.Exposure)
	fmt.Println()
	fmt.Println("Luminance:")
	fmt.Printf("  min   %.4f\n", stats.MinLuminance)
	fmt.Printf("  mean  %.4f\n", stats.MeanLuminance)
	fmt.Printf("  max   %.4f\n", stats.MaxLuminance)

	if img.Width != 2*img.Height {
		fmt.Println()
		fmt.Println("Warning: not 2:1, the panorama will stretch when projected")
	}
}

func cmdInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	noFlip := fs.Bool("no-flip", false, "Keep texture coordinates as stored")
	alphaMode := fs.Bool("alpha-mode", false, "Treat glTF BLEND materials as transparent")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: ibltool inspect [-no-flip] [-alpha-mode] <model>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	opts := model.DefaultOptions()
	opts.Import.FlipUVs = !*noFlip
	opts.AlphaModeTransparency = *alphaMode

	m, err := model.Load(gpu.NewNull(), path, opts)
	if err != nil {
		fail(err)
	}
	defer m.Destroy()

	b := m.Bounds()
	size := b.Size()
	fmt.Printf("Model:       %s\n", path)
	fmt.Printf("Meshes:      %d (%d transparent)\n", m.MeshCount(), m.TransparentCount())
	if b.Valid() {
		fmt.Printf("Bounds:      (%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)\n",
			b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
		fmt.Printf("Diagonal:    %.3f\n", size.Length())
	}
	if side := material.ReadSideChannel(path); side != nil {
		fmt.Printf("Materials:   %d with glTF factors\n", len(side.Materials))
	}

	fmt.Println()
	fmt.Println("Meshes:")
	var vertices, triangles int
	for i, mesh := range m.Meshes {
		vertices += len(mesh.Vertices)
		triangles += len(mesh.Indices) / 3
		flags := ""
		if mesh.Material.Transparent {
			flags = " transparent"
		}
		name := mesh.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("  %3d %-24s %7d verts %7d tris  material=%q%s\n",
			i, name, len(mesh.Vertices), len(mesh.Indices)/3, mesh.Material.Name, flags)
	}
	fmt.Printf("  total %d verts, %d tris\n", vertices, triangles)

	textures := m.Textures()
	if len(textures) == 0 {
		return
	}
	sort.Strings(textures)
	fmt.Println()
	fmt.Println("Textures:")
	for _, t := range textures {
		marker := ""
		if texture.IsEmbedded(t) {
			marker = " (embedded)"
		}
		fmt.Printf("  %s%s\n", t, marker)
	}
}

func cmdConfig(args []string) {
	cfg := config.Default()
	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote %s\n", args[0])
}
