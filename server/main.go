/******************************************************************************
 *
 *  Description :
 *
 *  Setup & initialization.
 *
 *****************************************************************************/

package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/handlers"
	"github.com/tinode/jsonco"

	"github.com/isomorphiccat/kemotown/server/address"
	_ "github.com/isomorphiccat/kemotown/server/db/mysql"
	_ "github.com/isomorphiccat/kemotown/server/db/postgres"
	"github.com/isomorphiccat/kemotown/server/logs"
	"github.com/isomorphiccat/kemotown/server/plugin"
	"github.com/isomorphiccat/kemotown/server/store"
)

const (
	// Terminate a live session after this timeout.
	idleSessionTimeout = time.Second * 55

	// API version.
	currentVersion = "0.1"

	defaultMaxMessageSize = 1 << 19 // 512K

	defaultTokenLifetime = 14 * 24 * time.Hour
)

var globals struct {
	hub          *Hub
	sessionStore *SessionStore
	registry     *plugin.Registry
	evaluator    *address.Evaluator

	statsUpdate chan *varUpdate

	tokenSalt      []byte
	tokenExpiresIn time.Duration

	maxMessageSize int64
}

type configType struct {
	Listen       string `json:"listen"`
	ExpvarPath   string `json:"expvar"`
	TokenSalt    []byte `json:"token_salt"`
	TokenExpires int    `json:"token_expires_in"`
	// Maximum message size allowed from client in bytes.
	MaxMessageSize int64           `json:"max_message_size"`
	Store          json.RawMessage `json:"store_config"`
	TLS            json.RawMessage `json:"tls"`
}

func main() {
	logs.Init()
	logs.Info.Printf("Server v%s pid=%d started with processes: %d", currentVersion,
		os.Getpid(), runtime.GOMAXPROCS(runtime.NumCPU()))

	configfile := flag.String("config", "./kemotown.conf", "Path to config file.")
	listenOn := flag.String("listen", "", "Override address and port to listen on.")
	initDb := flag.Bool("init_db", false, "Initialize the database schema and exit.")
	resetDb := flag.Bool("reset_db", false, "Drop and recreate the database, implies -init_db.")
	pprofUrl := flag.String("pprof_url", "", "Debugging only! URL path for exposing profiling info. Disabled if not set.")
	flag.Parse()

	logs.Info.Printf("Using config from: '%s'", *configfile)

	var config configType
	file, err := os.Open(*configfile)
	if err != nil {
		logs.Error.Fatal("Failed to read config file:", err)
	}
	// jsonco strips comments from the config.
	jr := jsonco.New(file)
	if err = json.NewDecoder(jr).Decode(&config); err != nil {
		switch jerr := err.(type) {
		case *json.UnmarshalTypeError:
			lnum, cnum, _ := jr.LineAndChar(jerr.Offset)
			logs.Error.Fatalf("Unmarshal error in config file in %s at %d:%d (offset %d bytes): %s",
				jerr.Field, lnum, cnum, jerr.Offset, jerr.Error())
		case *json.SyntaxError:
			lnum, cnum, _ := jr.LineAndChar(jerr.Offset)
			logs.Error.Fatalf("Syntax error in config file at %d:%d (offset %d bytes): %s",
				lnum, cnum, jerr.Offset, jerr.Error())
		default:
			logs.Error.Fatal("Failed to parse config file:", err)
		}
	}
	file.Close()

	if *listenOn != "" {
		config.Listen = *listenOn
	}
	if config.Listen == "" {
		config.Listen = ":6060"
	}

	if *initDb || *resetDb {
		// InitDb opens the adapter itself; Open would fail on a missing schema.
		if err = store.Store.InitDb(config.Store, *resetDb); err != nil {
			logs.Error.Fatal("Failed to initialize DB:", err)
		}
		logs.Info.Println("Database initialized")
		store.Store.Close()
		return
	}

	if err = store.Store.Open(1, config.Store); err != nil {
		logs.Error.Fatal("Failed to connect to DB:", err)
	}
	logs.Info.Println("DB adapter opened:", store.Store.GetAdapterName(),
		"version:", store.Store.GetAdapterVersion())
	defer func() {
		store.Store.Close()
		logs.Info.Println("Closed database connection(s)")
	}()

	globals.tokenSalt = config.TokenSalt
	if len(globals.tokenSalt) == 0 {
		logs.Error.Fatal("Config parameter 'token_salt' is required")
	}
	globals.tokenExpiresIn = time.Duration(config.TokenExpires) * time.Second
	if globals.tokenExpiresIn <= 0 {
		globals.tokenExpiresIn = defaultTokenLifetime
	}
	globals.maxMessageSize = config.MaxMessageSize
	if globals.maxMessageSize <= 0 {
		globals.maxMessageSize = defaultMaxMessageSize
	}

	globals.registry = plugin.NewRegistry()
	registerBuiltinPlugins(globals.registry)
	globals.evaluator = address.NewEvaluator(globals.registry, store.Follows.IsAccepted)

	globals.sessionStore = NewSessionStore()
	globals.hub = newHub(true)

	mux := http.NewServeMux()
	setupMux(mux)
	servePprof(mux, *pprofUrl)
	statsInit(mux, config.ExpvarPath)

	handler := handlers.CombinedLoggingHandler(os.Stdout, mux)

	if err = listenAndServe(config.Listen, handler, config.TLS, signalHandler()); err != nil {
		logs.Error.Fatal(err)
	}
	logs.Info.Println("All done, good bye")
}
