// Command paramprobe discovers hidden HTTP request parameters by
// comparing probe responses against a calibrated baseline.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/paramprobe/paramprobe/pkg/config"
	"github.com/paramprobe/paramprobe/pkg/httpclient"
	"github.com/paramprobe/paramprobe/pkg/probe"
	"github.com/paramprobe/paramprobe/pkg/runner"
	"github.com/paramprobe/paramprobe/pkg/scheduler"
	"github.com/paramprobe/paramprobe/pkg/ui"
	"github.com/paramprobe/paramprobe/pkg/wordlist"
)

// headerFlag collects repeated -H "Name: value" flags.
type headerFlag []string

func (h *headerFlag) String() string { return strings.Join(*h, ", ") }

func (h *headerFlag) Set(value string) error {
	*h = append(*h, value)
	return nil
}

// targetReport is one target's slice of the JSON output file.
type targetReport struct {
	Target     string                  `json:"target"`
	Error      string                  `json:"error,omitempty"`
	Duration   string                  `json:"duration"`
	Parameters []runner.FoundParameter `json:"parameters"`
}

func main() {
	var headers headerFlag

	targetURL := flag.String("u", "", "Target URL")
	listFile := flag.String("l", "", "File containing target URLs, one per line")
	method := flag.String("X", "", "HTTP method (default GET)")
	place := flag.String("P", "", "Injection place: query, body or headers (default query)")
	wordlistFile := flag.String("w", "", "Parameter wordlist file (default: built-in list)")
	configFile := flag.String("config", "", "YAML config file")
	outputFile := flag.String("o", "", "Write findings to a JSON file")
	maxParams := flag.Int("max", 0, "Parameters per request (0 = detect automatically)")
	learn := flag.Int("learn-requests", 0, "Stability learning requests (default 9)")
	verify := flag.Bool("verify", false, "Re-validate findings against the baseline")
	reflectedOnly := flag.Bool("reflected-only", false, "Only report parameters that reflect in the body")
	noCustom := flag.Bool("disable-custom-parameters", false, "Skip the common key=value sweep")
	concurrency := flag.Int("c", 0, "Concurrent targets (default 1)")
	timeout := flag.Int("timeout", 0, "Request timeout in seconds (default 15)")
	rateLimit := flag.Int("rate-limit", 0, "Max requests per second (0 = unlimited)")
	retries := flag.Int("retries", -1, "Retries on transport errors and 429/503 (default 1)")
	proxy := flag.String("x", "", "Proxy URL: http://, https://, socks5://")
	replayProxy := flag.String("replay-proxy", "", "Resend confirmed findings via this proxy")
	followRedirects := flag.Bool("follow-redirects", false, "Follow HTTP redirects")
	verbose := flag.Int("v", 0, "Verbosity level")
	silent := flag.Bool("silent", false, "Suppress all status output")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Var(&headers, "H", "Extra header \"Name: value\" (repeatable)")

	flag.Parse()

	cfg, err := buildConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "paramprobe: %v\n", err)
		os.Exit(1)
	}

	// Flags set on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u":
			cfg.TargetURL = *targetURL
		case "X":
			cfg.Method = strings.ToUpper(*method)
		case "P":
			cfg.InjectionPlace = *place
		case "max":
			cfg.MaxParams = *maxParams
		case "learn-requests":
			cfg.LearnRequestsCount = *learn
		case "verify":
			cfg.Verify = *verify
		case "reflected-only":
			cfg.ReflectedOnly = *reflectedOnly
		case "disable-custom-parameters":
			cfg.DisableCustomParameters = *noCustom
		case "c":
			cfg.Concurrency = *concurrency
		case "timeout":
			cfg.Timeout = time.Duration(*timeout) * time.Second
		case "rate-limit":
			cfg.RateLimit = *rateLimit
		case "retries":
			cfg.Retries = *retries
		case "x":
			cfg.Proxy = *proxy
		case "replay-proxy":
			cfg.ReplayProxy = *replayProxy
		case "follow-redirects":
			cfg.FollowRedirects = *followRedirects
		case "v":
			cfg.Verbose = *verbose
		case "no-color":
			cfg.NoColor = *noColor
		}
	})

	if *listFile != "" {
		targets, err := wordlist.LoadFile(*listFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "paramprobe: %v\n", err)
			os.Exit(1)
		}
		cfg.Targets = append(cfg.Targets, targets...)
	}

	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			fmt.Fprintf(os.Stderr, "paramprobe: malformed header %q, want \"Name: value\"\n", h)
			os.Exit(1)
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "paramprobe: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	ui.SetSilent(*silent)
	ui.SetNoColor(cfg.NoColor || !ui.IsTerminal())
	ui.PrintBanner()

	candidates := wordlist.Builtin()
	if *wordlistFile != "" {
		candidates, err = wordlist.LoadFile(*wordlistFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "paramprobe: %v\n", err)
			os.Exit(1)
		}
	}

	client := httpclient.New(httpclient.Config{
		Timeout:            cfg.Timeout,
		InsecureSkipVerify: true,
		Proxy:              cfg.Proxy,
		UserAgent:          ui.UserAgent(),
		RateLimit:          cfg.RateLimit,
		RetryCount:         cfg.Retries,
		FollowRedirects:    cfg.FollowRedirects,
	})

	var replayClient *http.Client
	if cfg.ReplayProxy != "" {
		rc := httpclient.WithProxy(cfg.ReplayProxy)
		rc.Timeout = cfg.Timeout
		rc.UserAgent = ui.UserAgent()
		replayClient = httpclient.New(rc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New[runner.Parameters]()
	sched.Concurrency = cfg.Concurrency

	results := sched.Run(ctx, cfg.AllTargets(), func(ctx context.Context, target string) (runner.Parameters, error) {
		defaults := &probe.RequestDefaults{
			Method:  cfg.Method,
			URL:     target,
			Place:   probe.ParsePlace(cfg.InjectionPlace),
			Headers: buildHeaders(cfg.Headers),
			Client:  client,
		}

		spec := runner.AutoFrom(runner.DefaultAutoStart)
		if cfg.MaxParams > 0 {
			spec = runner.Fixed(cfg.MaxParams)
		}

		// Each target gets its own candidate slice: the runner merges
		// names extracted from that target's baseline into it.
		params := make([]string, len(candidates))
		copy(params, candidates)

		r, err := runner.New(ctx, cfg, defaults, &params, spec, replayClient)
		if err != nil {
			return nil, err
		}
		return r.Run(ctx)
	})

	failed := 0
	var reports []targetReport
	for _, res := range results {
		report := targetReport{
			Target:     res.Target,
			Duration:   res.Duration.Round(time.Millisecond).String(),
			Parameters: res.Data,
		}
		if res.Error != nil {
			failed++
			report.Error = res.Error.Error()
			ui.Warn("~", fmt.Sprintf("%s: %v", res.Target, res.Error))
		} else {
			printFindings(res.Target, res.Data)
		}
		reports = append(reports, report)
	}

	if *outputFile != "" {
		if err := writeReport(*outputFile, reports); err != nil {
			fmt.Fprintf(os.Stderr, "paramprobe: %v\n", err)
			os.Exit(1)
		}
		ui.Info(cfg.Verbose, "#", fmt.Sprintf("wrote results to %s", *outputFile))
	}

	if failed == len(results) {
		os.Exit(1)
	}
}

func buildConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFile(path)
}

func buildHeaders(h map[string]string) http.Header {
	headers := make(http.Header, len(h))
	for name, value := range h {
		headers.Set(name, value)
	}
	return headers
}

func printFindings(target string, found runner.Parameters) {
	if ui.IsSilent() {
		// Machine-friendly: one name per line on stdout.
		for _, f := range found {
			fmt.Println(f.Name)
		}
		return
	}
	if len(found) == 0 {
		ui.Warn("~", fmt.Sprintf("%s: no hidden parameters found", target))
		return
	}
	for _, f := range found {
		ui.Found(f.Name, f.Reasons)
	}
}

func writeReport(path string, reports []targetReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
