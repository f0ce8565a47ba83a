// Command loratx sends a message over an SX127x radio, once or periodically.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NV4RE/loratx"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON radio configuration")
	msg := flag.String("msg", "Mensagem", "payload to send")
	interval := flag.Duration("interval", 0, "repeat the uplink at this interval, 0 sends once")
	wait := flag.Bool("wait", false, "wait for tx done after each uplink")
	timeout := flag.Duration("timeout", 5*time.Second, "time allowed on air per uplink")
	verbose := flag.Bool("v", false, "log driver activity")
	flag.Parse()

	log.Println("[loratx] Loading configuration")
	cfg := loratx.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loratx.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("[loratx] %v", err)
		}
	}

	log.Println("[loratx] Opening radio")
	radio, err := loratx.Open(cfg)
	if err != nil {
		log.Fatalf("[loratx] %v", err)
	}
	if *verbose {
		radio.SetLogger(func(format string, v ...interface{}) {
			log.Printf("[loratx] "+format, v...)
		})
	}

	if err := radio.Init(); err != nil {
		log.Printf("[loratx] init: %v", err)
		radio.Close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	u := uplinker{radio: radio, payload: []byte(*msg), wait: *wait, timeout: *timeout}
	err = u.run(ctx, *interval)
	stop()
	if cerr := radio.Close(); cerr != nil {
		log.Printf("[loratx] close: %v", cerr)
	}
	if err != nil {
		log.Printf("[loratx] %v", err)
		os.Exit(1)
	}
}
