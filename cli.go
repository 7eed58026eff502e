package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nedpals/mfulc/buildinfo"
	"github.com/nedpals/mfulc/config"
	"github.com/nedpals/mfulc/nfc"
	"github.com/nedpals/mfulc/server"
	"github.com/nedpals/mfulc/session"
)

// environment is everything the commands touch outside the process.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	newManager func(driver string) (nfc.Manager, error)
	readKey    func() (string, error)
	copyUID    func(uid string) error
}

func defaultEnvironment() *environment {
	return &environment{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newManager: nfc.NewManagerForDriver,
		readKey:    promptKey,
		copyUID:    clipboard.WriteAll,
	}
}

// promptKey reads a key from the terminal without echo.
func promptKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-k - needs a terminal to prompt for the key")
	}
	fmt.Fprint(os.Stderr, "key: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}
	return string(raw), nil
}

type options struct {
	info      bool
	readFile  string
	writeFile string
	pages     string
	key       string
	keyFile   string
	device    int
	poll      int
	override  bool
	quiet     bool

	driver     string
	configPath string
	events     string
	mdns       bool
	copyUID    bool
}

func newRootCommand(env *environment) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   buildinfo.Name,
		Short: buildinfo.Description,
		Long: buildinfo.DisplayName + "\n\n" +
			"Waits for a MIFARE Ultralight or Ultralight C tag on the selected reader,\n" +
			"authenticates Ultralight C tags and then shows, dumps or restores a page range.\n" +
			"Dump files are a flat sequence of 4-byte pages.",
		Version:       buildinfo.FullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.loadConfig(cmd); err != nil {
				return err
			}
			return runSessions(cmd.Context(), env, opts)
		},
	}
	root.SetVersionTemplate(buildinfo.BuildInfo() + "\n")
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	persistent := root.PersistentFlags()
	persistent.StringVar(&opts.driver, "driver", nfc.DriverLibnfc, "reader driver: "+strings.Join(nfc.GetAllDrivers(), "|"))
	persistent.StringVarP(&opts.configPath, "config", "c", "", "load settings from a YAML `file`")

	flags := root.Flags()
	flags.BoolVarP(&opts.info, "info", "i", false, "show UID, lock bytes, OTP and protection settings")
	flags.StringVarP(&opts.readFile, "read", "r", "", "dump pages to `file` (\"-\" for stdout)")
	flags.StringVarP(&opts.writeFile, "write", "w", "", "write pages from `file` (\"-\" for stdin)")
	flags.StringVarP(&opts.pages, "pages", "p", session.FullRange.String(), "page `range` start:end, inclusive")
	flags.StringVarP(&opts.key, "key", "k", "", "Ultralight C key as 32 hex characters, \"-\" to prompt")
	flags.StringVar(&opts.keyFile, "key-file", "", "read the Ultralight C key from a hex `file`")
	flags.IntVarP(&opts.device, "device", "d", 0, "use the reader with this `index`")
	flags.IntVarP(&opts.poll, "poll", "l", 0, "wait for the next tag every `seconds` (0 runs once)")
	flags.BoolVarP(&opts.override, "override", "o", false, "allow writes to pages 0-3")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors and the info report")
	flags.StringVar(&opts.events, "events", "", "publish session events over WebSocket on `addr`, e.g. :18080")
	flags.BoolVar(&opts.mdns, "mdns", false, "advertise the event feed over mDNS")
	flags.BoolVar(&opts.copyUID, "copy-uid", false, "copy the UID of each supported tag to the clipboard")

	root.MarkFlagsMutuallyExclusive("info", "read", "write")
	root.MarkFlagsMutuallyExclusive("key", "key-file")

	root.AddCommand(newDevicesCommand(env, opts))
	return root
}

func newDevicesCommand(env *environment, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List attached readers and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.loadConfig(cmd); err != nil {
				return err
			}
			manager, err := env.newManager(opts.driver)
			if err != nil {
				return err
			}
			defer releaseManager(manager)

			devices, err := manager.ListDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				return nfc.WrapError(nfc.ErrCodeNoDevice, "devices", "no nfc device attached", nil)
			}
			printDevices(env.stdout, devices)
			return nil
		},
	}
}

// loadConfig merges the config file into opts. Flags set on the command line win.
func (o *options) loadConfig(cmd *cobra.Command) error {
	if o.configPath == "" {
		return nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	changed := cmd.Flags().Changed
	if cfg.Driver != "" && !changed("driver") {
		o.driver = cfg.Driver
	}
	if cfg.Device != nil && !changed("device") {
		o.device = *cfg.Device
	}
	if cfg.KeyFile != "" && !changed("key-file") && !changed("key") {
		o.keyFile = cfg.KeyFile
	}
	if cfg.Pages != "" && !changed("pages") {
		o.pages = cfg.Pages
	}
	if cfg.PollSeconds > 0 && !changed("poll") {
		o.poll = cfg.PollSeconds
	}
	if cfg.Events.Listen != "" && !changed("events") {
		o.events = cfg.Events.Listen
	}
	o.quiet = o.quiet || cfg.Quiet
	o.override = o.override || cfg.Override
	o.copyUID = o.copyUID || cfg.CopyUID
	o.mdns = o.mdns || cfg.Events.MDNS
	return nil
}

// sessionConfig turns the flags into the session configuration.
func (o *options) sessionConfig(env *environment) (session.Config, error) {
	cfg := session.Config{Override: o.override}

	switch {
	case o.info:
		cfg.Action = session.ActionInfo
	case o.readFile != "":
		cfg.Action = session.ActionRead
		cfg.Target = o.readFile
	case o.writeFile != "":
		cfg.Action = session.ActionWrite
		cfg.Target = o.writeFile
	}

	r, err := session.ParseRange(o.pages)
	if err != nil {
		return cfg, err
	}
	cfg.Range = r

	if o.device < 0 {
		return cfg, fmt.Errorf("invalid device index %d", o.device)
	}
	if o.poll < 0 {
		return cfg, fmt.Errorf("invalid poll interval %d", o.poll)
	}
	if o.mdns && o.events == "" {
		return cfg, errors.New("--mdns needs --events")
	}

	switch {
	case o.key == session.StdioTarget:
		if cfg.Action == session.ActionWrite && cfg.Target == session.StdioTarget {
			return cfg, errors.New("cannot read both the key and the dump from stdin")
		}
		raw, err := env.readKey()
		if err != nil {
			return cfg, err
		}
		k, err := nfc.ParseKey(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Key = &k
	case o.key != "":
		k, err := nfc.ParseKey(o.key)
		if err != nil {
			return cfg, err
		}
		cfg.Key = &k
	case o.keyFile != "":
		k, err := nfc.LoadKeyHexFile(o.keyFile)
		if err != nil {
			return cfg, err
		}
		cfg.Key = &k
	}

	return cfg, cfg.Validate()
}

// progressWriter picks the stream for progress lines. A dump to stdout keeps
// stdout for the pages alone.
func (o *options) progressWriter(env *environment, cfg session.Config) io.Writer {
	if o.quiet {
		return io.Discard
	}
	if cfg.Action == session.ActionRead && cfg.Target == session.StdioTarget {
		return env.stderr
	}
	return env.stdout
}

func runSessions(ctx context.Context, env *environment, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.New(env.stderr, "["+buildinfo.Name+"] ", 0)

	cfg, err := opts.sessionConfig(env)
	if err != nil {
		return err
	}

	progress := opts.progressWriter(env, cfg)
	out := session.Discard
	if !opts.quiet {
		out = session.NewPrinter(progress)
	}

	manager, err := env.newManager(opts.driver)
	if err != nil {
		return err
	}
	defer releaseManager(manager)

	out.Printf("%s\n", buildinfo.DisplayName)
	out.Printf("%s version: %s\n", opts.driver, manager.Version())

	dev, devices, err := nfc.SelectDevice(manager, opts.device)
	if len(devices) > 0 {
		printDevices(progress, devices)
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			logger.Printf("closing device: %v", cerr)
		}
	}()
	out.Printf("NFC device: %s opened\n", dev.String())

	ctrl := session.NewController(cfg, out, logger)
	ctrl.Report = env.stdout
	ctrl.Engine.Stdin = env.stdin
	ctrl.Engine.Stdout = env.stdout
	if opts.copyUID {
		ctrl.OnTag = func(id nfc.TagIdentity) {
			if err := env.copyUID(id.UID); err != nil {
				logger.Printf("copying UID to clipboard: %v", err)
			}
		}
	}

	if opts.events != "" {
		srv := server.New(server.Config{Addr: opts.events, MDNS: opts.mdns, Logger: logger})
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start event feed: %w", err)
		}
		defer srv.Stop()
		for _, u := range server.FeedURLs(srv.Addr()) {
			out.Printf("event feed: %s\n", u)
		}
		ctrl.Events = srv
	}

	poller := &session.Poller{
		Controller: ctrl,
		Interval:   time.Duration(opts.poll) * time.Second,
	}
	return poller.Run(ctx, dev)
}

// exitHint suggests a next step for errors that leave no reader to use.
func exitHint(err error) string {
	if !nfc.IsNoDeviceError(err) {
		return ""
	}
	return fmt.Sprintf("run '%s devices --driver <%s>' to list readers", buildinfo.Name, strings.Join(nfc.GetAllDrivers(), "|"))
}

func printDevices(w io.Writer, devices []string) {
	fmt.Fprintln(w, "--------------------------------------------------")
	for i, d := range devices {
		fmt.Fprintf(w, "(%d) %s\n", i, d)
	}
	fmt.Fprintln(w, "--------------------------------------------------")
}

// releaseManager frees driver resources held by managers that have any.
func releaseManager(m nfc.Manager) {
	if r, ok := m.(interface{ Release() error }); ok {
		r.Release()
	}
}
