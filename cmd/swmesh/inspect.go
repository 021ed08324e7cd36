package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/nautiq/swmesh"
)

type inspectReport struct {
	Name      string          `json:"name"`
	Version   uint16          `json:"version"`
	Vertices  int             `json:"vertices"`
	Triangles int             `json:"triangles"`
	SubMeshes []subMeshReport `json:"submeshes,omitempty"`
}

type subMeshReport struct {
	Name       string `json:"name"`
	Shader     string `json:"shader"`
	IndexStart uint32 `json:"indexStart"`
	IndexLen   uint32 `json:"indexLength"`
}

func inspectCmd() *cli.Command {
	var jsonOut bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a single mesh file and print its structure",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "emit JSON", Destination: &jsonOut},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("expected exactly one mesh file", 2)
			}
			name := cmd.Args().First()

			data, err := os.ReadFile(name)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			mesh, err := swmesh.Decode(data)
			if err != nil {
				return cli.Exit(fmt.Sprintf("%s: %v", name, err), 1)
			}

			report := inspectReport{
				Name:      name,
				Version:   mesh.Header().Version,
				Vertices:  mesh.VertexCount(),
				Triangles: mesh.TriangleCount(),
			}
			for _, sm := range mesh.SubMeshes() {
				report.SubMeshes = append(report.SubMeshes, subMeshReport{
					Name:       sm.Name,
					Shader:     sm.Shader.String(),
					IndexStart: sm.IndexStart,
					IndexLen:   sm.IndexLength,
				})
			}

			if jsonOut {
				out, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("%s: version %d, %d vertices, %d triangles\n",
				report.Name, report.Version, report.Vertices, report.Triangles)
			for _, sm := range report.SubMeshes {
				fmt.Printf("  submesh %-24q shader=%-12s indices [%d, %d)\n",
					sm.Name, sm.Shader, sm.IndexStart, sm.IndexStart+sm.IndexLen)
			}
			return nil
		},
	}
}
