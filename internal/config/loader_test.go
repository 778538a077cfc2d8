package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/TJ-dotcom/ApexMatchAI/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"APEX_CONFIG", "APEX_ADDR", "APEX_QUEUE_SIZE", "APEX_WORKER_COUNT", "APEX_DEDUPE_SIZE",
	"APEX_EMBEDDER", "APEX_TEI_EMBED_URL", "APEX_QUALIFIER_SCOPE", "APEX_RERANK_TOP_N", "APEX_LOG_FORMAT",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "apexmatch-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	return f.Name()
}

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
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.Embedder, convey.ShouldEqual, "hashing")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("APEX_ADDR", ":8080")
			_ = os.Setenv("APEX_QUEUE_SIZE", "64")
			_ = os.Setenv("APEX_WORKER_COUNT", "3")
			_ = os.Setenv("APEX_QUALIFIER_SCOPE", "LINE")
			_ = os.Setenv("APEX_RERANK_TOP_N", "7")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.QualifierScope, convey.ShouldEqual, "line")
				convey.So(cfg.RerankTopN, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
queue_size: 300
embedder: tei
tei_embed_url: "http://tei:8080"
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("APEX_CONFIG", tmpFile)
			_ = os.Setenv("APEX_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.Embedder, convey.ShouldEqual, "tei")
				convey.So(cfg.TEIEmbedURL, convey.ShouldEqual, "http://tei:8080")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When the file is passed explicitly", func() {
			tmpFile := createTempConfigFile("worker_count: 9\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("APEX_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 9)
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("APEX_CONFIG", "/non/existent/file.yaml")
			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a numeric env var is malformed", func() {
			_ = os.Setenv("APEX_QUEUE_SIZE", "lots")
			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("APEX_EMBEDDER", "tei")
			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
