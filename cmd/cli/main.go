package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

type service struct {
	Service         string  `json:"service"`
	Name            string  `json:"name"`
	StatusText      string  `json:"statusText"`
	Uptime          float64 `json:"uptime"`
	ResponseTime    int64   `json:"responseTime"`
	Confidence      int     `json:"confidence"`
	ConfidenceLevel string  `json:"confidenceLevel"`
	Error           string  `json:"error"`
}

type client struct {
	base string
	key  string
	http *http.Client
}

func main() {
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	c := &client{
		base: strings.TrimRight(api, "/"),
		key:  os.Getenv("API_KEY"),
		http: &http.Client{Timeout: 2 * time.Minute},
	}

	args := os.Args[1:]
	cmd := "status"
	if len(args) > 0 {
		cmd = args[0]
	}

	var err error
	switch cmd {
	case "status":
		err = c.printBoard(http.MethodGet, "/api/status")
	case "check":
		if len(args) > 1 {
			err = c.printOne(args[1])
		} else {
			err = c.printBoard(http.MethodPost, "/api/check")
		}
	case "export":
		err = c.export()
	default:
		fmt.Fprintln(os.Stderr, "usage: cli [status | check [target] | export]")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (c *client) do(method, path string) (*http.Response, error) {
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contacting API: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("API returned status: %s", resp.Status)
	}
	return resp, nil
}

func (c *client) printBoard(method, path string) error {
	resp, err := c.do(method, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var body struct {
		Services []service `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	printTable(body.Services)
	return nil
}

func (c *client) printOne(key string) error {
	resp, err := c.do(http.MethodPost, "/api/targets/"+url.PathEscape(key)+"/check")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var s service
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	printTable([]service{s})
	return nil
}

func (c *client) export() error {
	resp, err := c.do(http.MethodGet, "/api/export")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}

func printTable(services []service) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATUS\tUPTIME\tRESPONSE\tCONFIDENCE\tERROR")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%d ms\t%d%% (%s)\t%s\n",
			s.Service, s.StatusText, s.Uptime, s.ResponseTime, s.Confidence, s.ConfidenceLevel, s.Error)
	}
	_ = tw.Flush()
}
