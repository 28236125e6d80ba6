/******************************************************************************
 *
 *  Description :
 *
 *  Web server initialization and shutdown.
 *
 *****************************************************************************/

package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/crypto/acme/autocert"

	"github.com/isomorphiccat/kemotown/server/logs"
)

type tlsConfig struct {
	// Flag enabling TLS.
	Enabled bool `json:"enabled"`
	// Listen on port 80 and redirect plain HTTP to HTTPS.
	RedirectHTTP string `json:"http_redirect"`
	// ACME autocert config, e.g. letsencrypt.org.
	Autocert *tlsAutocertConfig `json:"autocert"`
	// If Autocert is not defined, provide file names of static certificate and key.
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
}

type tlsAutocertConfig struct {
	// Domains to support by autocert.
	Domains []string `json:"domains"`
	// Name of directory where auto-certificates are cached.
	CertCache string `json:"cache"`
	// Contact email for letsencrypt.
	Email string `json:"email"`
}

func listenAndServe(addr string, mux http.Handler, tlsRaw json.RawMessage, stop <-chan bool) error {
	var tlsCfg tlsConfig

	if tlsRaw != nil {
		if err := json.Unmarshal(tlsRaw, &tlsCfg); err != nil {
			return errors.New("http: failed to parse tls config: " + err.Error())
		}
	}

	shuttingDown := false

	httpdone := make(chan bool)

	server := &http.Server{Addr: addr, Handler: mux}
	if tlsCfg.Enabled {
		// If port is not specified, use default https port (443),
		// otherwise it will default to 80.
		if server.Addr == "" {
			server.Addr = ":https"
		}

		server.TLSConfig = &tls.Config{}
		if tlsCfg.Autocert != nil {
			certManager := autocert.Manager{
				Prompt:     autocert.AcceptTOS,
				HostPolicy: autocert.HostWhitelist(tlsCfg.Autocert.Domains...),
				Cache:      autocert.DirCache(tlsCfg.Autocert.CertCache),
				Email:      tlsCfg.Autocert.Email,
			}

			server.TLSConfig.GetCertificate = certManager.GetCertificate
			if tlsCfg.CertFile != "" || tlsCfg.KeyFile != "" {
				logs.Info.Println("HTTP server: using autocert, static cert and key files are ignored")
				tlsCfg.CertFile = ""
				tlsCfg.KeyFile = ""
			}
		} else if tlsCfg.CertFile == "" || tlsCfg.KeyFile == "" {
			return errors.New("HTTP server: missing certificate or key file names")
		}
	}

	go func() {
		var err error
		if tlsCfg.Enabled {
			if tlsCfg.RedirectHTTP != "" {
				logs.Info.Printf("Redirecting connections from HTTP at [%s] to HTTPS at [%s]",
					tlsCfg.RedirectHTTP, server.Addr)
				go http.ListenAndServe(tlsCfg.RedirectHTTP, tlsRedirect(addr))
			}

			logs.Info.Printf("Listening for client HTTPS connections on [%s]", server.Addr)
			err = server.ListenAndServeTLS(tlsCfg.CertFile, tlsCfg.KeyFile)
		} else {
			logs.Info.Printf("Listening for client HTTP connections on [%s]", server.Addr)
			err = server.ListenAndServe()
		}
		if err != nil {
			if shuttingDown {
				logs.Info.Println("HTTP server: stopped")
			} else {
				logs.Error.Println("HTTP server: failed", err)
			}
		}
		httpdone <- true
	}()

	// Wait for either a termination signal or an error.
loop:
	for {
		select {
		case <-stop:
			// Flip the flag that we are terminating and close the
			// Accept-ing socket, so no new connections are possible.
			shuttingDown = true
			if err := server.Shutdown(context.Background()); err != nil {
				// failure/timeout shutting down the server gracefully
				return err
			}

			// Wait for http server to stop Accept()-ing connections.
			<-httpdone

			// Terminate all sessions.
			globals.sessionStore.Shutdown()

			// Shutdown the hub.
			hubdone := make(chan bool)
			globals.hub.shutdown <- hubdone

			// Wait for the hub to finish.
			<-hubdone

			statsShutdown()

			break loop

		case <-httpdone:
			break loop
		}
	}
	return nil
}

func signalHandler() <-chan bool {
	stop := make(chan bool)

	signchan := make(chan os.Signal, 1)
	signal.Notify(signchan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		// Wait for a signal. Don't care which signal it is.
		sig := <-signchan
		logs.Info.Printf("Signal received: '%s', shutting down", sig)
		stop <- true
	}()

	return stop
}

// Redirect HTTP requests to HTTPS.
func tlsRedirect(toPort string) http.HandlerFunc {
	if toPort == ":443" || toPort == ":https" {
		toPort = ""
	}
	return func(wrt http.ResponseWriter, req *http.Request) {
		target := "https://" + strings.Split(req.Host, ":")[0] + toPort + req.URL.Path
		if req.URL.RawQuery != "" {
			target += "?" + req.URL.RawQuery
		}
		http.Redirect(wrt, req, target, http.StatusTemporaryRedirect)
	}
}
