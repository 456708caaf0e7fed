package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	makao "github.com/makaohq/makao-client"
	"github.com/makaohq/makao-client/conn"
	"github.com/makaohq/makao-client/events"
	"github.com/makaohq/makao-client/router"
	"github.com/makaohq/makao-client/ui"
)

type Config struct {
	Host       string `env:"MAKAO_HOST,default=localhost"`
	Port       string `env:"MAKAO_PORT,default=8000"`
	PlayerName string `env:"MAKAO_NAME,required"`
	Lobby      string `env:"MAKAO_LOBBY"`
	NewLobby   bool   `env:"MAKAO_NEW_LOBBY,default=false"`
	Private    bool   `env:"MAKAO_PRIVATE,default=false"`
	TokenFile  string `env:"MAKAO_TOKEN_FILE,default=.makao-token.json"`
	LogLevel   string `env:"MAKAO_LOG_LEVEL,default=info"`
}

func main() {
	reconnect := flag.Bool("reconnect", false, "resume the previous session")
	flag.Parse()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		logrus.Fatalf("configuration: %v", err)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})

	bus := events.NewBus(log)

	game := makao.NewGame(makao.Opts{
		Bus:       bus,
		LocalName: cfg.PlayerName,
		Layout:    makao.DefaultLayout,
		Log:       log,
	})
	defer game.Close()

	r := router.New(bus, log)

	manager := conn.NewManager(bus, conn.NewFileTokenStore(cfg.TokenFile), log)
	manager.SetIdentity(cfg.PlayerName, cfg.Host, cfg.Port)
	manager.SetLobby(conn.Lobby{Name: cfg.Lobby, CreateNew: cfg.NewLobby, Private: cfg.Private})
	manager.SetReceiver(r.HandleRaw)
	manager.OnClose(func(err error) {
		log.Info("disconnected; use -reconnect to resume")
	})
	defer manager.Close()

	ui.NewTerminal(bus, cfg.PlayerName, os.Stdout, log)

	ctx := context.Background()
	if *reconnect {
		err = manager.Reconnect(ctx)
	} else {
		err = manager.Connect(ctx)
	}
	if err != nil {
		log.Fatalf("could not connect: %v", err)
	}

	repl(bus, log)
}

// repl reads player commands and turns them into bus command events. The
// connection manager picks those up, encodes them and sends.
func repl(bus *events.Bus, log logrus.FieldLogger) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	commands := []string{"draw", "play", "pass", "ready", "unready", "npc", "kick", "say", "quit"}
	line.SetCompleter(func(prefix string) (out []string) {
		for _, c := range commands {
			if strings.HasPrefix(c, prefix) {
				out = append(out, c)
			}
		}
		return
	})

	for {
		input, err := line.Prompt("makao> ")
		if err != nil {
			return
		}
		line.AppendHistory(input)

		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "draw":
			bus.Publish(events.CommandDraw, nil)
		case "play":
			// play <rank><suit> [nextColor], e.g. "play AH" or "play AH S"
			if len(fields) < 2 || len(fields[1]) < 2 {
				ui.C.Warn.Println("usage: play <rank><suit> [nextColor]")
				continue
			}
			card := strings.ToUpper(fields[1])
			suit := card[len(card)-1:]
			rank := card[:len(card)-1]
			nextColor := ""
			if len(fields) > 2 {
				nextColor = strings.ToUpper(fields[2])
			}
			bus.Publish(events.CommandPlayCard, events.PlayCommandPayload{
				Suit:      suit,
				Rank:      rank,
				NextColor: nextColor,
			})
		case "pass":
			bus.Publish(events.CommandPass, nil)
		case "ready":
			bus.Publish(events.CommandReady, nil)
		case "unready":
			bus.Publish(events.CommandUnready, nil)
		case "npc":
			bus.Publish(events.CommandRegisterNPC, nil)
		case "kick":
			if len(fields) < 2 {
				ui.C.Warn.Println("usage: kick <username>")
				continue
			}
			bus.Publish(events.CommandKick, events.KickCommandPayload{Username: fields[1]})
		case "say":
			bus.Publish(events.CommandChat, events.ChatCommandPayload{Text: strings.Join(fields[1:], " ")})
		case "quit":
			return
		default:
			log.Warnf("unknown command %q", fields[0])
		}
	}
}
