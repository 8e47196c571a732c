package main

import (
	"context"
	"os"
	"testing"

	app "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMainWiring(t *testing.T) {
	Convey("Given the main application", t, func() {
		Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("COURTSIDE_ADDR", ":8080")
			_ = os.Setenv("COURTSIDE_SWAP_BUDGET", "1000")
			defer func() {
				_ = os.Unsetenv("COURTSIDE_ADDR")
				_ = os.Unsetenv("COURTSIDE_SWAP_BUDGET")
			}()

			cfg, err := config.Load(context.Background())

			Convey("Then the overrides land", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.SwapBudget, ShouldEqual, 1000)
			})
		})

		Convey("When opening the store without a path", func() {
			So(logger.Init(), ShouldBeNil)
			store, err := openStore(context.Background(), config.New(), logger.Get())

			Convey("Then the in-memory store is used", func() {
				So(err, ShouldBeNil)
				So(store, ShouldNotBeNil)
				So(store.Close(), ShouldBeNil)
			})
		})

		Convey("When creating the service with defaults", func() {
			svc := app.New()
			So(svc, ShouldNotBeNil)
		})
	})
}
