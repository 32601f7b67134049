// Command mock-device streams randomized vital readings to a running
// healthwatch-cloud instance over the device websocket, the way a wristband
// would. Useful for local development and demos.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"healthwatch-cloud/internal/streaming"
	vitals "healthwatch-cloud/internal/vitals/domain"
)

func main() {
	var (
		serverURL = flag.String("url", "ws://localhost:8080/ws/device", "device websocket endpoint")
		deviceID  = flag.String("device", "mock-wristband", "device id to report")
		interval  = flag.Duration("interval", time.Second, "time between readings")
		fallEvery = flag.Int("fall-every", 0, "emit a fall signal every N readings (0 disables)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for ctx.Err() == nil {
		if err := run(ctx, *serverURL, *deviceID, *interval, *fallEvery); err != nil {
			fmt.Fprintf(os.Stderr, "connection lost: %v, reconnecting in 2s\n", err)
		}
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
	}
}

func run(ctx context.Context, serverURL, deviceID string, interval time.Duration, fallEvery int) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return err
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer conn.Close()
	fmt.Printf("connected to %s as %s\n", serverURL, deviceID)

	// Inbound envelopes: alarms and schedule syncs from the cloud.
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := streaming.Decode(data)
			if err != nil {
				continue
			}
			switch msg.Type {
			case streaming.MessageAlarm:
				fmt.Printf("ALARM: take %s (%s)\n", msg.Medicine, msg.Time)
			case streaming.MessageStopAlarm:
				fmt.Println("alarm cleared")
			case streaming.MessageSyncTime:
				fmt.Printf("next reminder synced: %s\n", msg.Time)
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	sent := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sent++
			fall := fallEvery > 0 && sent%fallEvery == 0
			data, err := json.Marshal(randomReading(deviceID, fall))
			if err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

func randomReading(deviceID string, fall bool) vitals.RawReading {
	hr := 60 + rand.Intn(50)
	spo2 := 94 + rand.Intn(7)
	temp := 36.0 + rand.Float64()*1.5
	return vitals.RawReading{
		DeviceID:     deviceID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		HeartRate:    &hr,
		SpO2:         &spo2,
		Temperature:  &temp,
		FallDetected: fall,
	}
}
