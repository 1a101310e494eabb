package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var commonGivenNames = []string{
	"María", "José", "Ana", "Luis", "Carmen", "Jesús", "Lucía", "Andrés", "Sofía", "Raúl",
	"Inés", "Tomás", "Elena", "Ramón", "Marta", "Iván", "Nuria", "Óscar", "Begoña", "Julián",
}
var commonSurnames = []string{
	"García", "Fernández", "González", "Rodríguez", "López", "Martínez", "Sánchez", "Pérez", "Gómez", "Martín",
	"Jiménez", "Ruiz", "Hernández", "Díaz", "Moreno", "Muñoz", "Álvarez", "Romero", "Alonso", "Gutiérrez",
}

func GenerateRandomSpanishName() string {
	given := commonGivenNames[rand.Intn(len(commonGivenNames))]
	first := commonSurnames[rand.Intn(len(commonSurnames))]
	second := commonSurnames[rand.Intn(len(commonSurnames))]
	return given + " " + first + " " + second
}

// FoldAccents quita tildes y diéresis: "Muñoz Álvarez" -> "Munoz Alvarez".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// UsernameFromName forma "nombre.apellido" en minúsculas y sin tildes a partir del nombre completo.
func UsernameFromName(fullName string) string {
	parts := strings.Fields(strings.ToLower(FoldAccents(fullName)))
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > 2 {
		parts = parts[:2]
	}

	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, p)
		if p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ".")
}

var digits = "0123456789"

func GenerateUsernameFromName(fullName string) string {
	username := UsernameFromName(fullName)

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateRandomUser crea un hermano de prueba. Aproximadamente la mitad queda habilitada para el púlpito.
func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomSpanishName()
	username := GenerateUsernameFromName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:         username,
		PasswordHash:     string(passwordHash),
		FullName:         fullName,
		Email:            username + "@" + emailDomainName,
		Role:             domain.RoleMember,
		IsPulpitEligible: rand.Intn(2) == 0,
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
