package services

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidActivationCode is the only error Verify returns. Signature
// mismatch, malformed code and wrong issuer all collapse into it so callers
// cannot distinguish why a code was refused.
var ErrInvalidActivationCode = errors.New("invalid or expired activation code")

const activationIssuer = "golf-school-activation"

type activationClaims struct {
	StudentName string `json:"student_name"`
	jwt.RegisteredClaims
}

// ActivationTokenService mints the codes students scan from LINE to link
// their account. Codes are deliberately long-lived (no exp claim) and
// reusable so one student can link several devices; rotating the secret is
// the only revocation.
type ActivationTokenService struct {
	secret []byte
}

func NewActivationTokenService(secret string) *ActivationTokenService {
	return &ActivationTokenService{secret: []byte(secret)}
}

func (s *ActivationTokenService) Issue(studentID int64, studentName string) (string, error) {
	claims := activationClaims{
		StudentName: studentName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  activationIssuer,
			Subject: strconv.FormatInt(studentID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *ActivationTokenService) Verify(code string) (int64, string, error) {
	claims := &activationClaims{}
	token, err := jwt.ParseWithClaims(code, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidActivationCode
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidActivationCode
	}
	if claims.Issuer != activationIssuer {
		return 0, "", ErrInvalidActivationCode
	}
	studentID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || studentID <= 0 {
		return 0, "", ErrInvalidActivationCode
	}
	return studentID, claims.StudentName, nil
}
