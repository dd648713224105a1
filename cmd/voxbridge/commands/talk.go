package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxbridge/voxbridge/internal/expert"
	"github.com/voxbridge/voxbridge/pkg/bridge"
	"github.com/voxbridge/voxbridge/pkg/cli"
	"github.com/voxbridge/voxbridge/pkg/media"
	"github.com/voxbridge/voxbridge/pkg/realtime"
)

var (
	talkMode      string
	talkLanguage  string
	talkPersona   string
	talkModel     string
	talkVoice     string
	talkAudio     string
	talkTransport string
)

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Interactive realtime session in the terminal",
	Long: `Start a realtime session and drive it from the terminal.

The microphone source is an Ogg Opus file replayed at realtime pace
(audio_file in the config, or --audio). In manual mode, 't' toggles the
push-to-talk gate; typed text is sent as a text turn in either mode.

--transport ws runs the session headless over WebSocket instead of
WebRTC: no media path, text turns only.

Commands inside the session:
  t              press / release the talk key (manual mode)
  /mode <m>      switch turn-taking mode (auto | manual)
  /lang <code>   switch language
  /persona <id>  switch persona
  /status        show session status
  /quit          disconnect and exit
  anything else  send as a text message`,
	RunE: runTalk,
}

func init() {
	talkCmd.Flags().StringVar(&talkMode, "mode", "", "turn-taking mode: auto or manual")
	talkCmd.Flags().StringVar(&talkLanguage, "language", "", "language code")
	talkCmd.Flags().StringVar(&talkPersona, "persona", "", "persona ID")
	talkCmd.Flags().StringVar(&talkModel, "model", "", "realtime model")
	talkCmd.Flags().StringVar(&talkVoice, "voice", "", "assistant voice")
	talkCmd.Flags().StringVar(&talkAudio, "audio", "", "Ogg Opus file used as the microphone")
	talkCmd.Flags().StringVar(&talkTransport, "transport", "webrtc", "session transport: webrtc or ws")
	rootCmd.AddCommand(talkCmd)
}

func runTalk(cmd *cobra.Command, _ []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: set api_key in the config file or %s", "OPENAI_API_KEY")
	}

	sel := bridge.Selections{
		Mode:      bridge.Mode(pick(talkMode, cfg.Mode)),
		Language:  pick(talkLanguage, cfg.Language),
		PersonaID: pick(talkPersona, cfg.Persona),
		Model:     pick(talkModel, cfg.Model),
		Voice:     pick(talkVoice, cfg.Voice),
	}
	if !sel.Mode.Valid() {
		return fmt.Errorf("invalid mode %q", sel.Mode)
	}

	styles := cli.NewStyles(cli.DefaultTheme)

	var clientOpts []realtime.Option
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, realtime.WithBaseURL(cfg.BaseURL))
	}
	client := realtime.NewClient(cfg.APIKey, clientOpts...)

	var dialer bridge.Dialer
	switch talkTransport {
	case "webrtc":
		audio := cfg.AudioFile
		if talkAudio != "" {
			audio = talkAudio
		}
		if audio == "" {
			return fmt.Errorf("no microphone source: set audio_file in the config or pass --audio")
		}
		dialer = &bridge.WebRTCDialer{
			Client:   client,
			Provider: &media.FileProvider{MicrophonePath: audio},
			Source:   media.SourceMicrophone,
		}
	case "ws":
		dialer = &bridge.WebSocketDialer{Client: client}
	default:
		return fmt.Errorf("invalid transport %q: want webrtc or ws", talkTransport)
	}

	var forward bridge.TranscriptSink
	if cfg.ExpertModel != "" {
		responder, err := expert.New(cfg.APIKey, cfg.ExpertModel, expert.WithTimeout(30*time.Second))
		if err != nil {
			return err
		}
		personas := cfg.PersonaSet()
		instructions, _ := personas.Resolve(sel.PersonaID, sel.Language)
		forward = &expert.Forwarder{
			Responder:    responder,
			Instructions: instructions,
			OnReply: func(text string) {
				fmt.Println(styles.Transcript("expert", text))
			},
		}
	}

	ctrl := bridge.NewController(bridge.Options{
		Dialer:      dialer,
		Forward:     forward,
		Personas:    cfg.PersonaSet(),
		SettleDelay: cfg.SettleDelay(),
		Events: bridge.Events{
			StateChanged: func(s bridge.State) {
				fmt.Println(styles.Status.Render("[" + s.String() + "]"))
			},
			Transcript: func(role, text string) {
				fmt.Println(styles.Transcript(role, text))
			},
			Warning: func(msg string) {
				fmt.Println(styles.Warn.Render("warning: " + msg))
			},
			ResponseFailed: func(detail string) {
				fmt.Println(styles.Warn.Render("response failed: " + detail))
			},
			Speech: func(active bool) {
				if active {
					fmt.Println(styles.Help.Render("(speech detected)"))
				}
			},
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ctrl.Connect(ctx, sel); err != nil {
		return err
	}
	defer ctrl.Disconnect()

	fmt.Println(styles.Help.Render("connected; 't' to talk (manual mode), text to chat, /quit to exit"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := handleTalkInput(ctrl, styles, line); done {
				return nil
			}
		}
	}
}

func handleTalkInput(ctrl *bridge.Controller, styles cli.Styles, line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false

	case line == "t":
		if ctrl.Status().State == bridge.StateConnectedRecording {
			if err := ctrl.TalkRelease(); err != nil {
				fmt.Println(styles.Warn.Render(err.Error()))
			}
		} else {
			if err := ctrl.TalkPress(); err != nil {
				fmt.Println(styles.Warn.Render(err.Error()))
			} else {
				fmt.Println(styles.Help.Render("(recording; 't' again to send)"))
			}
		}

	case line == "/quit":
		return true

	case line == "/status":
		st := ctrl.Status()
		fmt.Printf("state=%s mode=%s language=%s persona=%s mic=%v\n",
			st.State, st.Mode, st.Language, st.PersonaID, st.MicEnabled)

	case strings.HasPrefix(line, "/mode "):
		mode := bridge.Mode(strings.TrimSpace(strings.TrimPrefix(line, "/mode ")))
		if err := ctrl.SetMode(mode); err != nil {
			fmt.Println(styles.Warn.Render(err.Error()))
		}

	case strings.HasPrefix(line, "/lang "):
		if err := ctrl.SetLanguage(strings.TrimSpace(strings.TrimPrefix(line, "/lang "))); err != nil {
			fmt.Println(styles.Warn.Render(err.Error()))
		}

	case strings.HasPrefix(line, "/persona "):
		if err := ctrl.SetPersona(strings.TrimSpace(strings.TrimPrefix(line, "/persona "))); err != nil {
			fmt.Println(styles.Warn.Render(err.Error()))
		}

	case strings.HasPrefix(line, "/"):
		fmt.Println(styles.Warn.Render("unknown command: " + line))

	default:
		if err := ctrl.SendText(line); err != nil {
			fmt.Println(styles.Warn.Render(err.Error()))
		}
	}
	return false
}

func pick(flag, cfg string) string {
	if flag != "" {
		return flag
	}
	return cfg
}
