package edgetts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"narrationgen/pkg/config"
	"narrationgen/pkg/tracker"
	"narrationgen/pkg/tts"
)

const outputFormat = "audio-24khz-48kbitrate-mono-mp3"

// Provider implements tts.Provider for Microsoft Edge TTS over its websocket endpoint.
type Provider struct {
	cfg     config.EdgeTTSConfig
	dialer  *websocket.Dialer
	tracker *tracker.Tracker
}

// NewProvider creates a new Edge TTS provider.
func NewProvider(cfg config.EdgeTTSConfig, t *tracker.Tracker) *Provider {
	return &Provider{cfg: cfg, dialer: websocket.DefaultDialer, tracker: t}
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return config.EngineEdgeTTS
}

// Synthesize generates an .mp3 file using Edge TTS.
func (p *Provider) Synthesize(ctx context.Context, text, voice, outputPath string) (string, error) {
	if voice == "" {
		return "", fmt.Errorf("voice ID is required")
	}

	conn, err := p.dial(ctx)
	if err != nil {
		p.fail()
		return "", err
	}
	defer conn.Close()

	// Reads do not observe ctx, so cancellation closes the connection to unblock them.
	stopClose := context.AfterFunc(ctx, func() { conn.Close() })
	defer stopClose()

	if err := p.sendConfig(conn); err != nil {
		p.fail()
		return "", err
	}

	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")
	ssml := buildSSML(voice, text)
	if err := p.sendSSML(conn, ssml, requestID); err != nil {
		tts.Log("EDGETTS", voice, ssml, 0, err)
		p.fail()
		return "", err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		p.fail()
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := p.consumeResponses(ctx, conn, file); err != nil {
		tts.Log("EDGETTS", voice, ssml, 0, err)
		p.fail()
		return "", err
	}

	tts.Log("EDGETTS", voice, ssml, 200, nil)
	if p.tracker != nil {
		p.tracker.TrackSuccess(p.Name())
	}
	return "mp3", nil
}

func (p *Provider) fail() {
	if p.tracker != nil {
		p.tracker.TrackFailure(p.Name())
	}
}

// Configured reports which connection settings are missing.
func (p *Provider) Configured() error {
	var missing []string
	for _, f := range []struct{ val, env string }{
		{p.cfg.BaseURL, "EDGE_TTS_BASE_URL"},
		{p.cfg.Origin, "EDGE_TTS_ORIGIN"},
		{p.cfg.UserAgent, "EDGE_TTS_USER_AGENT"},
		{p.cfg.TrustedClientToken, "EDGE_TTS_TRUSTED_CLIENT_TOKEN"},
		{p.cfg.SecMSGecVersion, "EDGE_TTS_SEC_MS_GEC_VERSION"},
	} {
		if f.val == "" {
			missing = append(missing, f.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("edge tts not configured, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (p *Provider) dial(ctx context.Context) (*websocket.Conn, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Origin", p.cfg.Origin)
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("User-Agent", p.cfg.UserAgent)
	header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	header.Set("Accept-Language", "en-US,en;q=0.9")

	// MUID Cookie
	muid := strings.ReplaceAll(uuid.New().String(), "-", "")
	header.Set("Cookie", fmt.Sprintf("muid=%s", muid))

	token := generateSecMSGec(p.cfg.TrustedClientToken, time.Now())
	url := fmt.Sprintf("%s?TrustedClientToken=%s&Sec-MS-GEC=%s&Sec-MS-GEC-Version=%s",
		p.cfg.BaseURL, p.cfg.TrustedClientToken, token, p.cfg.SecMSGecVersion)

	var dialErr error
	for i := 0; i < 3; i++ {
		conn, resp, err := p.dialer.DialContext(ctx, url, header)
		if err == nil {
			return conn, nil
		}
		dialErr = err
		if resp != nil {
			slog.Warn("EdgeTTS: handshake failure", "status", resp.Status, "status_code", resp.StatusCode)
			resp.Body.Close()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("websocket dial failed after retries: %w", dialErr)
}

// generateSecMSGec derives the Sec-MS-GEC token: the Windows file time of now,
// rounded down to five minutes, hashed together with the client token.
func generateSecMSGec(trustedClientToken string, now time.Time) string {
	ticks := now.Unix() + 11644473600
	ticks -= ticks % 300

	strToHash := fmt.Sprintf("%d0000000%s", ticks, trustedClientToken)

	hash := sha256.Sum256([]byte(strToHash))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

func (p *Provider) sendConfig(conn *websocket.Conn) error {
	configMsg := "Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n{\"context\":{\"synthesis\":{\"audio\":{\"metadataoptions\":{\"sentenceBoundaryEnabled\":\"false\",\"wordBoundaryEnabled\":\"false\"},\"outputFormat\":\"" + outputFormat + "\"}}}}"
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("failed to send speech.config: %w", err)
	}
	return nil
}

func (p *Provider) sendSSML(conn *websocket.Conn, ssml, requestID string) error {
	ssmlMsg := fmt.Sprintf("X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s", requestID, ssml)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}
	return nil
}

func buildSSML(voice, text string) string {
	lang := tts.VoiceLocale(voice, "en-US")
	return fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'><voice name='%s'>%s</voice></speak>",
		lang, voice, tts.EscapeXML(text))
}

func (p *Provider) consumeResponses(ctx context.Context, conn *websocket.Conn, file *os.File) error {
	received := 0
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("read message failed: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if strings.Contains(string(data), "Path:turn.end") {
				if received == 0 {
					return fmt.Errorf("no audio was received")
				}
				return nil
			}
		case websocket.BinaryMessage:
			n, err := handleBinaryMessage(data, file)
			if err != nil {
				return err
			}
			received += n
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// handleBinaryMessage strips the 2-byte length-prefixed header and writes the audio payload.
func handleBinaryMessage(data []byte, file *os.File) (int, error) {
	if len(data) < 2 {
		return 0, nil
	}
	headerLength := int(uint16(data[0])<<8 | uint16(data[1]))
	if len(data) < 2+headerLength {
		return 0, nil
	}
	audioData := data[2+headerLength:]
	if len(audioData) == 0 {
		return 0, nil
	}
	if _, err := file.Write(audioData); err != nil {
		return 0, fmt.Errorf("write audio data failed: %w", err)
	}
	return len(audioData), nil
}

// Voices returns the neural voices used for Indian-language narration.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "hi-IN-SwaraNeural", Name: "Swara (India)", Language: "hi-IN", IsNeural: true},
		{ID: "hi-IN-MadhurNeural", Name: "Madhur (India)", Language: "hi-IN", IsNeural: true},
		{ID: "en-IN-NeerjaNeural", Name: "Neerja (India)", Language: "en-IN", IsNeural: true},
		{ID: "en-IN-PrabhatNeural", Name: "Prabhat (India)", Language: "en-IN", IsNeural: true},
		{ID: "ta-IN-PallaviNeural", Name: "Pallavi (India)", Language: "ta-IN", IsNeural: true},
		{ID: "mr-IN-AarohiNeural", Name: "Aarohi (India)", Language: "mr-IN", IsNeural: true},
	}, nil
}
