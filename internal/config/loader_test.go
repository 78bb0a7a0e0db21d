package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/heatsheet/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TurnoverSeconds, convey.ShouldEqual, 10)
				convey.So(cfg.PersistWorkers, convey.ShouldEqual, 1)
				convey.So(cfg.Days, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HEATSHEET_ADDR", ":8080")
			_ = os.Setenv("HEATSHEET_TURNOVER_SECONDS", "20")
			_ = os.Setenv("HEATSHEET_LUNCH_START", "11:45")
			_ = os.Setenv("HEATSHEET_FALLBACK_DURATION", "05:00")
			_ = os.Setenv("HEATSHEET_LOG_FORMAT", "json")
			_ = os.Setenv("HEATSHEET_MEET", "spring-open")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TurnoverSeconds, convey.ShouldEqual, 20)
				convey.So(cfg.LunchStart, convey.ShouldEqual, "11:45")
				convey.So(cfg.FallbackSeconds(), convey.ShouldEqual, 300)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.Meet, convey.ShouldEqual, "spring-open")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
turnover_seconds: 15
lunch_start: "12:30"
lunch_end: "13:00"
store_driver: sqlite
store_dsn: /tmp/heatsheet.db
days:
  - key: sat
    label: Saturday
    start_event: 1
    end_event: 40
    day_start: "07:30"
  - key: sun
    label: Sunday
    start_event: 41
    end_event: 90
    day_start: "08:00"
`)
			_ = os.Setenv("HEATSHEET_CONFIG", tmpFile)
			_ = os.Setenv("HEATSHEET_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file is applied and env wins over it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.TurnoverSeconds, convey.ShouldEqual, 15)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, "sqlite")
				convey.So(cfg.Days, convey.ShouldHaveLength, 2)

				table, err := cfg.DayTable()
				convey.So(err, convey.ShouldBeNil)
				convey.So(table.KeyOf(50), convey.ShouldEqual, "sun")
				convey.So(table.LabelOf("sat"), convey.ShouldEqual, "Saturday")
				convey.So(table.KeyOf(91), convey.ShouldEqual, "")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("HEATSHEET_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an env value has the wrong type", func() {
			_ = os.Setenv("HEATSHEET_TURNOVER_SECONDS", "ten")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When validation fails", func() {
			_ = os.Setenv("HEATSHEET_ADDR", "")
			_ = os.Setenv("HEATSHEET_LOG_LEVEL", "loud")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an invalid config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"HEATSHEET_CONFIG",
		"HEATSHEET_ADDR",
		"HEATSHEET_TURNOVER_SECONDS",
		"HEATSHEET_LUNCH_START",
		"HEATSHEET_FALLBACK_DURATION",
		"HEATSHEET_LOG_FORMAT",
		"HEATSHEET_LOG_LEVEL",
		"HEATSHEET_MEET",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	tmpFile, err := os.CreateTemp(t.TempDir(), "heatsheet-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
