package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"favplaces/client"
	"favplaces/config"
	"favplaces/handlers"
	"favplaces/logger"
	"favplaces/models"

	"github.com/gorilla/websocket"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <command>\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  places        list all available places\n")
	fmt.Fprintf(os.Stderr, "  favourites    list favourite places\n")
	fmt.Fprintf(os.Stderr, "  add <id>      mark a place as favourite\n")
	fmt.Fprintf(os.Stderr, "  remove <id>   unmark a favourite place\n")
	fmt.Fprintf(os.Stderr, "  watch         print favourites every time they change\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func main() {
	addr := flag.String("addr", config.API_URL, "Base URL of the places API")
	timeout := flag.Duration("timeout", config.CLIENT_TIMEOUT, "Timeout of a single request")
	flag.Usage = usage
	flag.Parse()
	logger.Init(config.LOG_LEVEL, true)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *addr, *timeout, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Get().Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, timeout time.Duration, args []string, out io.Writer) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("no command given")
	}
	slot := client.NewErrorSlot(func(message string) {
		if message != "" {
			fmt.Fprintf(out, "! %s\n", message)
		}
	})
	syncer := client.NewSynchronizer(client.NewHTTPTransport(addr, timeout), slot)

	switch args[0] {
	case "places":
		places, err := syncer.Available(ctx)
		if err != nil {
			return err
		}
		printPlaces(out, places)
	case "favourites":
		fmt.Fprintln(out, "Loading favourite places...")
		places, err := syncer.Load(ctx)
		if err != nil {
			return err
		}
		printPlaces(out, places)
	case "add", "remove":
		if len(args) != 2 {
			return fmt.Errorf("%s needs exactly one place id", args[0])
		}
		return mutate(ctx, syncer, args[0], args[1], out)
	case "watch":
		return watch(ctx, addr, out)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func mutate(ctx context.Context, syncer *client.Synchronizer, command, id string, out io.Writer) error {
	if _, err := syncer.Load(ctx); err != nil {
		return err
	}
	unsubscribe := syncer.Places().Subscribe(func(places models.FavouritePlaces) {
		fmt.Fprintf(out, "~ %s\n", strings.Join(places.IDs(), ", "))
	})
	defer unsubscribe()

	var err error
	if command == "add" {
		available, lerr := syncer.Available(ctx)
		if lerr != nil {
			return lerr
		}
		place, ok := models.FindPlace(available, id)
		if !ok {
			return models.NotFound("place " + id + " not found")
		}
		err = syncer.Add(ctx, place)
	} else {
		err = syncer.Remove(ctx, models.Place{ID: id})
	}
	if err != nil {
		return err
	}
	printPlaces(out, syncer.Places().Places())
	return nil
}

// watch follows the change feed until ctx is done
func watch(ctx context.Context, addr string, out io.Writer) error {
	u, err := url.Parse(addr)
	if err != nil {
		return err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = strings.TrimSuffix(u.Path, "/") + handlers.FeedPath

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return models.Network("cannot open the change feed", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return models.Network("change feed closed", err)
		}
		msg := handlers.UserPlacesResponse{}
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Get().Warn().Err(err).Msg("Skipping unreadable feed message")
			continue
		}
		fmt.Fprintf(out, "--- %s\n", time.Now().Format(time.TimeOnly))
		printPlaces(out, msg.UserPlaces)
	}
}

func printPlaces(out io.Writer, places []models.Place) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range places {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Title, p.Image.Src)
	}
	_ = w.Flush()
}
