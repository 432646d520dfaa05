// eventtail follows the delivery-events topic and prints each entry. Useful
// for watching a driver session from the dispatch side.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"gitlab.com/swifttrack/driver-app/internal/events"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
	topic := flag.String("topic", "delivery_events", "topic to tail")
	group := flag.String("group", "swifttrack-eventtail", "consumer group id")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        strings.Split(*brokers, ","),
		GroupID:        *group,
		Topic:          *topic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("closing kafka reader: %v", err)
		}
	}()

	log.Printf("tailing topic %q on %s", *topic, *brokers)

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("read message: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var ev events.DeliveryEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Printf("malformed event at offset %d: %v", m.Offset, err)
			continue
		}
		fmt.Printf("%s  %-24s  %s  %s -> %s", ev.At.Format(time.RFC3339), ev.Type, ev.PackageID, ev.From, ev.To)
		if ev.Reason != "" {
			fmt.Printf("  reason=%s", ev.Reason)
		}
		if ev.Recipient != "" {
			fmt.Printf("  recipient=%q", ev.Recipient)
		}
		fmt.Println()
	}
}
