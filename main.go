//    Copyright 2017-2026 Ewout Prangsma
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	terminate "github.com/pulcy/go-terminate"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/binkynet/PinMux/pkg/board"
	"github.com/binkynet/PinMux/pkg/logging"
	"github.com/binkynet/PinMux/pkg/resolver"
	"github.com/binkynet/PinMux/pkg/server"
	"github.com/binkynet/PinMux/pkg/service"
	"github.com/binkynet/PinMux/pkg/service/bridge"
	"github.com/binkynet/PinMux/pkg/service/pinctl"
	"github.com/binkynet/PinMux/pkg/ui"
)

const (
	projectName     = "BinkyNet Pin Multiplexer"
	defaultHTTPPort = 7129
	defaultGRPCPort = 7130
	defaultSSHPort  = 7122
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
	maskAny        = errors.WithStack
)

func main() {
	var levelFlag string
	var boardPath string
	var bridgeType string
	var serverHost string
	var httpPort, grpcPort, sshPort int
	var mqttBroker, mqttTopic string
	var debug, show bool
	var mapEntries []string
	var sysfsConf bridge.SysfsConfig

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVar(&boardPath, "board", "", "Path of a JSON board file (default: built-in LPCXpresso54608)")
	pflag.StringVarP(&bridgeType, "bridge", "b", "virtual", "Type of bridge to use (virtual|sysfs)")
	pflag.IntVar(&sysfsConf.LineBase, "sysfs-line-base", 0, "GPIO line number of P0_0 (sysfs bridge only)")
	pflag.BoolVar(&sysfsConf.ActiveLow, "sysfs-active-low", false, "Treat GPIO lines as active low (sysfs bridge only)")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the servers will listen on")
	pflag.IntVar(&httpPort, "http-port", defaultHTTPPort, "Port the HTTP server will listen on")
	pflag.IntVar(&grpcPort, "grpc-port", defaultGRPCPort, "Port the GRPC server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on")
	pflag.StringVar(&mqttBroker, "mqtt-broker", "", "Address of an MQTT broker to send logs to (tcp://host:1883)")
	pflag.StringVar(&mqttTopic, "mqtt-topic", "binky/pinmux/log", "MQTT topic to send logs to")
	pflag.BoolVar(&debug, "debug", false, "Trace pin resolution")
	pflag.StringSliceVar(&mapEntries, "map", nil, "Add alias=pin entries to the mapping table")
	pflag.BoolVar(&show, "show", false, "Print all pins and exit")
	pflag.Parse()

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var outputs []io.Writer
	var mqttWriter logging.MQTTWriter
	if mqttBroker != "" {
		mqttWriter = logging.NewMQTTWriter(ctx)
		outputs = append(outputs, mqttWriter)
	}
	logger, err := logging.NewLogger(levelFlag, os.Stderr, outputs...)
	if err != nil {
		Exitf("Invalid log level: %v\n", err)
	}
	if mqttWriter != nil {
		client, err := logging.NewMQTTClient(mqttBroker, "pinmux-"+projectVersion)
		if err != nil {
			logger.Warn().Err(err).Str("broker", mqttBroker).Msg("Failed to connect to MQTT broker")
		} else {
			defer client.Disconnect(250)
			mqttWriter.SetDestination(mqttTopic, client)
			mqttWriter.Enable(true)
		}
	}

	b, err := loadBoard(boardPath)
	if err != nil {
		Exitf("Failed to load board: %v\n", err)
	}

	var br bridge.API
	switch bridgeType {
	case "virtual":
		br = bridge.NewVirtualBridge()
	case "sysfs":
		br = bridge.NewSysfsBridge(sysfsConf, logger)
	default:
		Exitf("Unknown bridge type '%s' (virtual|sysfs)\n", bridgeType)
	}

	r := resolver.New(logger, nil, b.Board, b.CPU)
	r.State().SetDebug(debug)
	if len(mapEntries) > 0 {
		m, err := parseMap(r, mapEntries)
		if err != nil {
			Exitf("Invalid --map: %v\n", err)
		}
		r.State().SetMappingTable(m)
	}
	ctl := pinctl.New(logger, r, br)

	if show {
		printPins(os.Stdout, b.Name, ctl)
		br.Close()
		return
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		InitialPins:    b.Init,
	}, service.Dependencies{
		Logger:     logger,
		Bridge:     br,
		Controller: ctl,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	srv, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: httpPort,
		GRPCPort: grpcPort,
		SSHPort:  sshPort,
	}, logger, ui.New(ctl), ctl)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	logger.Info().
		Str("board", b.Name).
		Str("bridge", br.Name()).
		Int("pins", b.CPU.Len()).
		Msg("Pin multiplexer ready")
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// loadBoard loads the board in the given file, or the built-in board
// when path is empty.
func loadBoard(path string) (*board.Board, error) {
	if path == "" {
		return board.Default()
	}
	b, err := board.Load(path)
	if err != nil {
		return nil, maskAny(err)
	}
	return b, nil
}

// parseMap converts alias=pin entries into a mapping table.
func parseMap(r *resolver.Resolver, entries []string) (resolver.Map, error) {
	kv := make(map[string]string, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, errors.Errorf("expected alias=pin, got '%s'", e)
		}
		kv[parts[0]] = parts[1]
	}
	return server.BuildMap(r, kv)
}

// printPins writes all pins of the board with their state.
func printPins(w io.Writer, boardName string, ctl *pinctl.Controller) {
	title := lipgloss.NewStyle().Bold(true).Underline(true)
	fmt.Fprintln(w, title.Render(boardName))
	for _, line := range ui.Lines(ctl) {
		fmt.Fprintln(w, line)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
