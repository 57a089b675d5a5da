package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SampleRate is the PCM sample rate the client is required to downsample to
// before sending frames.
const SampleRate = 16000

// MessageTypeServerError tags bridge-side failures sent to the client.
const MessageTypeServerError = "server_error"

// Provider event kinds that are relayed back to the client. Anything that
// looks like an error event is relayed as well.
var forwardedEvents = map[string]struct{}{
	"partial_transcript":                   {},
	"committed_transcript":                 {},
	"committed_transcript_with_timestamps": {},
	"session_started":                      {},
}

// audioChunk is the provider's expected wrapper for one binary PCM frame.
type audioChunk struct {
	MessageType string `json:"message_type"`
	AudioBase64 string `json:"audio_base_64"`
	SampleRate  int    `json:"sample_rate"`
}

// serverError is the event sent to the client when the bridge itself fails.
type serverError struct {
	MessageType string `json:"message_type"`
	Detail      string `json:"detail"`
}

// Bridge relays one recording gesture between a client WebSocket and the
// streaming transcription provider. It buffers nothing: binary PCM frames go
// out as they arrive, transcript events come back as they arrive, and either
// side closing tears the whole relay down.
type Bridge struct {
	apiKey   string
	endpoint string
	dialer   *websocket.Dialer
	log      *zap.Logger
}

// NewBridge creates a bridge for the given provider endpoint.
func NewBridge(apiKey, endpoint string, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		apiKey:   apiKey,
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		log:      log,
	}
}

// Relay opens the provider connection and pumps frames both ways until
// either side closes. The client connection is not closed here; the caller
// owns it.
func (b *Bridge) Relay(ctx context.Context, client *websocket.Conn) error {
	header := http.Header{}
	header.Set("xi-api-key", b.apiKey)

	provider, resp, err := b.dialer.DialContext(ctx, b.endpoint, header)
	if err != nil {
		if resp != nil {
			b.log.Warn("provider dial failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		} else {
			b.log.Warn("provider dial failed", zap.Error(err))
		}
		writeServerError(client, &sync.Mutex{}, "transcription provider unavailable")
		return err
	}
	defer provider.Close()

	// gorilla permits one concurrent writer per connection. The provider
	// conn is written only by the audio pump; client writes are shared
	// between the transcript pump and the error path, so they take a lock.
	var clientWriteMu sync.Mutex

	errc := make(chan error, 2)

	go b.pumpAudio(client, provider, errc)
	go b.pumpTranscripts(client, provider, &clientWriteMu, errc)

	// First pump to fail (including normal closes) ends the relay. Closing
	// both connections unblocks the other pump; frames in flight are
	// dropped by design.
	err = <-errc
	provider.Close()

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
		return nil
	}
	return err
}

// pumpAudio forwards client binary frames to the provider, wrapped in the
// provider's base64 chunk envelope. Text frames from the client are ignored.
func (b *Bridge) pumpAudio(client, provider *websocket.Conn, errc chan<- error) {
	for {
		messageType, data, err := client.ReadMessage()
		if err != nil {
			errc <- err
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}

		chunk := audioChunk{
			MessageType: "input_audio_chunk",
			AudioBase64: base64.StdEncoding.EncodeToString(data),
			SampleRate:  SampleRate,
		}
		if err := provider.WriteJSON(chunk); err != nil {
			errc <- err
			return
		}
	}
}

// pumpTranscripts forwards transcript and error events from the provider
// back to the client verbatim.
func (b *Bridge) pumpTranscripts(client, provider *websocket.Conn, clientMu *sync.Mutex, errc chan<- error) {
	for {
		_, data, err := provider.ReadMessage()
		if err != nil {
			errc <- err
			return
		}

		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			continue
		}
		if !shouldForward(payload) {
			continue
		}

		clientMu.Lock()
		err = client.WriteMessage(websocket.TextMessage, data)
		clientMu.Unlock()
		if err != nil {
			errc <- err
			return
		}
	}
}

func shouldForward(payload map[string]any) bool {
	messageType, _ := payload["message_type"].(string)
	if _, ok := forwardedEvents[messageType]; ok {
		return true
	}
	if strings.Contains(messageType, "error") {
		return true
	}
	_, hasError := payload["error"]
	return hasError
}

func writeServerError(client *websocket.Conn, mu *sync.Mutex, detail string) {
	mu.Lock()
	defer mu.Unlock()
	// Best effort; the client may already be gone.
	_ = client.WriteJSON(serverError{MessageType: MessageTypeServerError, Detail: detail})
}
