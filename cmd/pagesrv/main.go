package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
)

// pagesrv is a development paragraph source. It serves passage pages as
// {username}-{page}.json from a directory and answers 404 for any page that
// does not exist, which the platform treats as end of material.

var pageFile = regexp.MustCompile(`^[a-z0-9._-]+-[0-9]+\.json$`)

func pageHandler(dir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		name := filepath.Base(r.URL.Path)
		if !pageFile.MatchString(name) {
			http.NotFound(w, r)
			return
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		// Reject files that are not a passage array so a bad fixture
		// fails loudly instead of confusing the platform.
		var passages []string
		if err := json.Unmarshal(data, &passages); err != nil {
			log.Printf("Invalid page file %s: %v", name, err)
			http.Error(w, "Invalid page file", http.StatusInternalServerError)
			return
		}

		log.Printf("Serving %s (%d passages)", name, len(passages))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

func main() {
	port := flag.Int("port", 9090, "Port to listen on")
	dir := flag.String("dir", "pages", "Directory containing {username}-{page}.json files")
	flag.Parse()

	if _, err := os.Stat(*dir); err != nil {
		log.Fatalf("Page directory %s not usable: %v", *dir, err)
	}

	http.HandleFunc("/", pageHandler(*dir))

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Paragraph page server starting on %s, serving %s", addr, *dir)
	log.Printf("Point the platform at: http://localhost%s", addr)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
