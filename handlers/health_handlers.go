package handlers

import (
	"runtime"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
)

// HandleHealth reports liveness.
// GET /health
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleVersion reports which build of the forecast service is running.
// GET /version
func HandleVersion(c *fiber.Ctx) error {
	resp := fiber.Map{
		"service":    "salesforecast",
		"go_version": runtime.Version(),
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.JSON(resp)
	}
	resp["module"] = info.Main.Path
	resp["version"] = info.Main.Version
	for _, dep := range info.Deps {
		if dep.Path == "github.com/sartorproj/goarima" {
			resp["model_library"] = dep.Path + "@" + dep.Version
		}
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			resp["revision"] = s.Value
		case "vcs.time":
			resp["built_at"] = s.Value
		}
	}
	return c.JSON(resp)
}
