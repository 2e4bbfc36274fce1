package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/bus/websocket"
	"github.com/robotalks/simpleserial.go/pkg/config"
	"github.com/robotalks/simpleserial.go/pkg/framework"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
	"github.com/robotalks/simpleserial.go/pkg/target"
	"github.com/robotalks/simpleserial.go/pkg/target/firmware"
)

func init() {
	config.SetupFlags()
}

func newTarget(conf *config.Config, b bus.Bus) (*target.Target, error) {
	platform := &target.SoftPlatform{Name: "sstarget"}
	d := ss.NewDispatcher(b, conf.Capacity)
	if err := firmware.Install(conf.Firmware, d, platform); err != nil {
		return nil, err
	}
	glog.Infof("firmware %s installed, %d of %d commands", conf.Firmware, d.Len(), d.Capacity())
	return target.New(platform, d), nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}

	if conf.Listen != "" {
		framework.RunOrFail(framework.NamedRun("websocket", framework.RunFunc(func(ctx context.Context) error {
			return websocket.Serve(ctx, conf.Listen, func(ctx context.Context, b *websocket.Bus) error {
				t, err := newTarget(conf, b)
				if err != nil {
					return err
				}
				return t.Run(ctx)
			})
		})))
		return
	}

	b, err := conf.OpenBus(config.RoleTarget)
	if err != nil {
		log.Fatalln(err)
	}
	t, err := newTarget(conf, b)
	if err != nil {
		log.Fatalln(err)
	}
	framework.RunOrFail(framework.NamedRun("target", framework.RunFunc(func(ctx context.Context) error {
		return t.RunClosing(ctx, b)
	})))
}
