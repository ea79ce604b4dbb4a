package handler

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// issueToken signs a session token for an anonymous participant. The token
// only proves "this caller is the participant it claims to be" towards the
// websocket upgrade; there is no account behind it.
func (h *Handler) issueToken(participantID string) (string, error) {
	claims := jwt.MapClaims{
		"participant_id": participantID,
		"exp":            time.Now().Add(time.Hour * 24).Unix(),
		"iss":            "healjai-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateToken parses the session token and returns the participant ID.
func (h *Handler) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.JWTSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	participantID, ok := claims["participant_id"].(string)
	if !ok || participantID == "" {
		return "", errors.New("token missing participant_id")
	}
	return participantID, nil
}
