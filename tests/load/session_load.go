//go:build load
// +build load

// Load driver for the PromptDeck backend. Each cycle opens a terminal
// session, types one command, and closes the session again.
//
// Run against a live server:
//
//	go run -tags load ./tests/load -addr http://localhost:8000 -requests 500 -workers 8
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	addr     = flag.String("addr", "http://localhost:8000", "backend base URL")
	requests = flag.Int("requests", 500, "total session cycles")
	workers  = flag.Int("workers", 8, "concurrent workers")
)

type cycle struct {
	took time.Duration
	err  error
}

func main() {
	flag.Parse()
	log.Printf("session load: %d cycles, %d workers against %s", *requests, *workers, *addr)

	client := &http.Client{Timeout: 10 * time.Second}

	jobs := make(chan int)
	out := make(chan cycle, *requests)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for n := range jobs {
				out <- run(client, worker, n)
			}
		}(w)
	}

	start := time.Now()
	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	cycles := make([]cycle, 0, *requests)
	for len(cycles) < *requests {
		cycles = append(cycles, <-out)
		if len(cycles)%100 == 0 {
			log.Printf("%d/%d cycles (%.1f/sec)", len(cycles), *requests,
				float64(len(cycles))/time.Since(start).Seconds())
		}
	}
	wg.Wait()

	report(cycles, time.Since(start))
}

// run opens a session, writes one command, and closes it.
func run(client *http.Client, worker, n int) cycle {
	start := time.Now()
	id := fmt.Sprintf("load-%d-%d", worker, n)

	err := post(client, "/terminal/sessions", fmt.Sprintf(`{"id":%q,"cols":80,"rows":24}`, id))
	if err == nil {
		err = post(client, "/terminal/sessions/"+id+"/input", `{"data":"true\n"}`)
	}
	if err == nil {
		err = del(client, "/terminal/sessions/"+id)
	}
	return cycle{took: time.Since(start), err: err}
}

func post(client *http.Client, path, body string) error {
	resp, err := client.Post(*addr+path, "application/json", strings.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return nil
}

func del(client *http.Client, path string) error {
	req, err := http.NewRequest(http.MethodDelete, *addr+path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	return nil
}

func report(cycles []cycle, elapsed time.Duration) {
	if len(cycles) == 0 {
		return
	}

	var failed int
	var firstErr error
	took := make([]time.Duration, 0, len(cycles))
	for _, c := range cycles {
		if c.err != nil {
			failed++
			if firstErr == nil {
				firstErr = c.err
			}
		}
		took = append(took, c.took)
	}
	sort.Slice(took, func(i, j int) bool { return took[i] < took[j] })

	n := len(took)
	fmt.Printf("\ncycles     %d (%d failed)\n", n, failed)
	fmt.Printf("elapsed    %v (%.1f cycles/sec)\n", elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	fmt.Printf("p50        %v\n", took[n/2])
	fmt.Printf("p95        %v\n", took[n*95/100])
	fmt.Printf("p99        %v\n", took[n*99/100])
	fmt.Printf("max        %v\n", took[n-1])
	if firstErr != nil {
		fmt.Printf("first err  %v\n", firstErr)
	}
}
