package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/milk9111/hellosnippet/pvd"
)

func main() {
	host := flag.String("host", pvd.DefaultHost, "listen host")
	port := flag.Int("port", pvd.DefaultPort, "listen port")
	every := flag.Int("every", 60, "log one frame out of this many (0 logs none)")
	flag.Parse()

	var srv *pvd.Server
	srv = pvd.NewServer(func(msg pvd.Message) {
		switch msg.Type {
		case pvd.MessageConnect:
			log.Printf("pvdview: client connected (instrumentation %03b, %d connections so far)", msg.Instrumentation, srv.TotalConnections())
		case pvd.MessageClose:
			log.Printf("pvdview: client closed after %d frames", srv.Frames())
		case pvd.MessageFrame:
			f := msg.Frame
			if f == nil || *every <= 0 || f.Index%uint64(*every) != 0 {
				return
			}
			log.Printf("pvdview: %s frame %d t=%.3f bodies=%d contacts=%d", f.Scene, f.Index, f.Time, len(f.Bodies), len(f.Contacts))
			for _, b := range f.Bodies {
				if b.Name == "" || b.Type == "static" {
					continue
				}
				log.Printf("pvdview:   %-10s %-9s (%.2f, %.2f) v=(%.2f, %.2f)", b.Name, b.Type, b.X, b.Y, b.VX, b.VY)
			}
		}
	})

	mux := http.NewServeMux()
	mux.Handle(pvd.DefaultPath, srv)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	log.Printf("pvdview: listening on ws://%s%s", addr, pvd.DefaultPath)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
