package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"hushmap/admin"
	"hushmap/api"
	"hushmap/app"
	"hushmap/events"
	"hushmap/location"
	"hushmap/mapview"
	"hushmap/places"
	"hushmap/rating"
)

var EnvFlag = flag.String("env", "dev", "Set the environment")
var ServeFlag = flag.Bool("serve", false, "Run the server")
var AddressFlag = flag.String("address", ":8080", "Address for server")

func main() {
	flag.Parse()

	if !*ServeFlag {
		fmt.Println("--serve not set")
		return
	}

	// render the api markdown
	md := api.Markdown()
	apiDoc := app.Render([]byte(md))
	apiHTML := app.RenderHTML("API", "API documentation", string(apiDoc))

	// place cache backing store, file-based by default
	var store places.Store
	if os.Getenv("HUSHMAP_CACHE") == "sqlite" {
		s, err := places.OpenSQLiteStore()
		if err != nil {
			fmt.Printf("Failed to open place cache: %v\n", err)
			return
		}
		defer s.Close()
		store = s
	} else {
		store = places.FileStore{}
	}
	cache := places.NewCache(places.FetchOverpass, store)

	// ratings go to the remote store when configured, otherwise to a
	// local persistent store
	var ratings rating.Store
	if url := os.Getenv("HUSHMAP_STORE_URL"); url != "" {
		ratings = rating.NewClient(url, os.Getenv("HUSHMAP_STORE_TOKEN"))
	} else {
		ratings = rating.NewPersistentMemory()
	}

	// location source, seeded with the fallback until a locate succeeds
	source := location.NewSource(location.IPProvider{})
	source.Start()

	// marker intent bus
	bus := events.NewBus()

	// serve the map
	handler := mapview.NewHandler(cache, ratings, source, bus)
	handler.Register()

	// serve the api doc
	http.Handle("/api", app.ServeHTML(apiHTML))

	// diagnostics
	http.HandleFunc("/admin", admin.Handler)
	http.HandleFunc("/admin/syslog", admin.SysLogHandler)
	http.HandleFunc("/admin/apilog", admin.APILogHandler)

	// landing page redirects to the map
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/map", 302)
	})

	fmt.Println("Starting server on", *AddressFlag)

	if err := http.ListenAndServe(*AddressFlag, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if *EnvFlag == "dev" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		if v := len(r.URL.Path); v > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = r.URL.Path[:v-1]
		}

		http.DefaultServeMux.ServeHTTP(w, r)
	})); err != nil {
		fmt.Printf("Server error: %v\n", err)
		return
	}
}
