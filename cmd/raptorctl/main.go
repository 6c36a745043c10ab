// Command raptorctl is a thin demonstration harness around the RAPTOR
// engine: it loads a real GTFS feed through gtfsparser (an external
// collaborator the core itself never imports), wires up an Engine, and
// prints, for every reachable stop, its earliest-arrival travel time and
// hop count. It is
// not part of the core: archive decompression, CSV parsing, and result
// serialization are all external concerns the engine itself never
// touches.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/patrickbr/gtfsparser"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	raptor "github.com/yongjun0702/krri-raptor"
	"github.com/yongjun0702/krri-raptor/gtfs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		gtfsPath       string
		serviceID      string
		originStopID   string
		departure      string
		maxTransfers   int
		walkingSpeed   float64
		footpathRadius float64
		horizon        float64
		verbose        bool
	)

	cmd := &cobra.Command{
		Use:   "raptorctl",
		Short: "Compute earliest-arrival transit routes from a GTFS feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
			if !verbose {
				logger = logger.Level(zerolog.WarnLevel)
			}

			departureSeconds, err := gtfs.ParseTime(departure)
			if err != nil {
				return fmt.Errorf("parsing --departure: %w", err)
			}

			feedInput, err := loadFeedInput(gtfsPath, serviceID, logger)
			if err != nil {
				return fmt.Errorf("loading gtfs feed: %w", err)
			}

			feed, err := gtfs.LoadFeed(*feedInput, logger)
			if err != nil {
				return fmt.Errorf("normalizing feed: %w", err)
			}

			cfg := raptor.DefaultConfig()
			cfg.Logger = logger
			if walkingSpeed > 0 {
				cfg.WalkingSpeedMPS = walkingSpeed
			}
			if footpathRadius > 0 {
				cfg.FootpathRadiusM = footpathRadius
			}
			if horizon > 0 {
				cfg.TripSearchHorizonS = horizon
			}
			cfg.MaxTransfers = maxTransfers

			engine := raptor.NewEngine(feed, cfg)

			result, err := engine.FindRoutes(context.Background(), originStopID, departureSeconds, maxTransfers)
			if err != nil {
				return err
			}

			printResult(result, engine.Metadata)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&gtfsPath, "gtfs", "", "path to a GTFS feed (.zip)")
	flags.StringVar(&serviceID, "service-id", "", "restrict to this service_id; all service_ids are kept if unset")
	flags.StringVar(&originStopID, "origin", "", "origin stop_id")
	flags.StringVar(&departure, "departure", "08:00:00", "departure time, HH:MM[:SS]")
	flags.IntVar(&maxTransfers, "max-transfers", 3, "maximum number of boarded trips")
	flags.Float64Var(&walkingSpeed, "walking-speed-mps", 0, "override walking speed in meters/second")
	flags.Float64Var(&footpathRadius, "footpath-radius-m", 0, "override footpath radius in meters")
	flags.Float64Var(&horizon, "trip-search-horizon-s", 0, "override trip boarding search horizon in seconds")
	flags.BoolVar(&verbose, "verbose", false, "log every round, not just warnings")
	cmd.MarkFlagRequired("gtfs")
	cmd.MarkFlagRequired("origin")

	return cmd
}

// loadFeedInput bridges a gtfsparser.Feed - which already did the
// archive decompression and CSV parsing this engine's core explicitly
// does not do - into the tabular rows gtfs.LoadFeed expects.
func loadFeedInput(path, serviceID string, logger zerolog.Logger) (*gtfs.FeedInput, error) {
	feed := gtfsparser.NewFeed()
	if err := feed.Parse(path); err != nil {
		return nil, err
	}

	stops := make([]gtfs.StopRow, 0, len(feed.Stops))
	for _, stop := range feed.Stops {
		stops = append(stops, gtfs.StopRow{
			StopID:   stop.Id,
			StopName: stop.Name,
			StopLat:  float64(stop.Lat),
			StopLon:  float64(stop.Lon),
		})
	}

	routes := make([]gtfs.RouteRow, 0, len(feed.Routes))
	for _, route := range feed.Routes {
		agencyID := ""
		if route.Agency != nil {
			agencyID = route.Agency.Id
		}
		routes = append(routes, gtfs.RouteRow{
			RouteID:        route.Id,
			RouteShortName: route.Short_name,
			AgencyID:       agencyID,
		})
	}

	seen_services := map[string]bool{}
	trips := make([]gtfs.TripRow, 0, len(feed.Trips))
	var stop_times []gtfs.StopTimeRow

	for _, trip := range feed.Trips {
		route_id := ""
		if trip.Route != nil {
			route_id = trip.Route.Id
		}
		trip_service_id := ""
		if trip.Service != nil {
			trip_service_id = trip.Service.Id()
			seen_services[trip_service_id] = true
		}
		trips = append(trips, gtfs.TripRow{TripID: trip.Id, RouteID: route_id, ServiceID: trip_service_id})

		for _, st := range trip.StopTimes {
			var stop_id string
			if s := st.Stop(); s != nil {
				stop_id = s.Id
			}
			stop_times = append(stop_times, gtfs.StopTimeRow{
				TripID:        trip.Id,
				StopID:        stop_id,
				StopSequence:  int(st.Sequence()),
				ArrivalTime:   formatHHMMSS(int(st.Arrival_time().SecondsSinceMidnight())),
				DepartureTime: formatHHMMSS(int(st.Departure_time().SecondsSinceMidnight())),
			})
		}
	}

	active := make([]string, 0, len(seen_services))
	if serviceID != "" {
		active = append(active, serviceID)
	} else {
		for id := range seen_services {
			active = append(active, id)
		}
	}

	return &gtfs.FeedInput{
		Stops:                stops,
		Trips:                trips,
		Routes:               routes,
		StopTimes:            stop_times,
		ActiveServicesByDate: map[string][]string{"selected": active},
	}, nil
}

func formatHHMMSS(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func printResult(result *raptor.Result, metadata map[string]gtfs.Metadata) {
	if result.Incomplete {
		fmt.Println("warning: query did not finish (cancelled/timed out), results are partial")
	}
	fmt.Printf("reachable stops: %d\n", len(result.FinalResult))
	for stopID, journey := range result.FinalResult {
		name := stopID
		if meta, ok := metadata[stopID]; ok {
			name = meta.StopName
		}
		fmt.Printf("%s (%s): %.0fs via %d hops\n", stopID, name, journey.TotalTime, len(journey.PathStops)-1)
	}
}
