package pkg

import (
	"crypto/rand"
	"crypto/sha1" //nolint: gosec // RFC 6455 requires SHA-1 for the WebSocket handshake
	"encoding/base64"
	"math/big"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	lobbyCodeLength = 6

	// Ambiguous characters (0/O, 1/I) are excluded so codes survive being
	// read aloud.
	lobbyCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateAcceptKey - generates key for WebSocket handshake.
func GenerateAcceptKey(key string) string {
	h := sha1.New() //nolint: gosec // RFC 6455 requires SHA-1 here

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// GenerateLobbyCode - generates a short shareable lobby code.
func GenerateLobbyCode() string {
	code := make([]byte, lobbyCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(lobbyCodeChars))))
		if err != nil {
			code[i] = lobbyCodeChars[0]
			continue
		}
		code[i] = lobbyCodeChars[n.Int64()]
	}

	return string(code)
}

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "error-generating-session-id"
	}

	return base64.RawURLEncoding.EncodeToString(b)
}
