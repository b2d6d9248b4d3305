package main

import (
	"flag"

	"go.uber.org/fx"

	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/appdir"
	"github.com/Psopandi30/perpustakaan-ppi19-sub000/internal/daemon"
)

func main() {
	configFlag := flag.String("config", appdir.ConfigPath(), "path to config.toml")
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides config)")
	flag.Parse()

	app := fx.New(
		daemon.Module(daemon.Params{
			ConfigPath: *configFlag,
			DataDir:    *dataDirFlag,
		}),
	)

	app.Run()
}
