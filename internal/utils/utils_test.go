package utils

import (
	"regexp"
	"strings"
	"testing"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Munoz Alvarez", FoldAccents("Muñoz Álvarez"))
	assert.Equal(t, "Begona Oscar Raul", FoldAccents("Begoña Óscar Raúl"))
	assert.Equal(t, "Guenes", FoldAccents("Güenes"))
}

func TestUsernameFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"María Gómez Ruiz", "maria.gomez"},
		{"  Iván   Núñez ", "ivan.nunez"},
		{"Óscar", "oscar"},
		{"José-Luis O'Neill", "joseluis.oneill"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsernameFromName(tt.name))
		})
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("cambiame", "idmji.local")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[a-z]+\.[a-z]+[0-9]{1,3}$`), user.Username)
	assert.Equal(t, user.Username+"@idmji.local", user.Email)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.NotEqual(t, "cambiame", user.PasswordHash)
}

func TestGenerateRandomOTP(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), GenerateRandomOTP())
}

func TestValidateServiceTemplate(t *testing.T) {
	tpl := &domain.ServiceTemplate{DayOfWeek: 3, DefaultStartTime: "19:00"}
	require.NoError(t, ValidateServiceTemplate(tpl))
	assert.Equal(t, "19:00:00", tpl.DefaultStartTime)

	assert.Error(t, ValidateServiceTemplate(&domain.ServiceTemplate{DayOfWeek: 7, DefaultStartTime: "19:00:00"}))
	assert.Error(t, ValidateServiceTemplate(&domain.ServiceTemplate{DayOfWeek: 0, DefaultStartTime: "25:00"}))
}

func TestValidateHoliday(t *testing.T) {
	assert.NoError(t, ValidateHoliday(&domain.Holiday{Kind: domain.HolidayWorking, Description: "Año Nuevo"}))
	assert.Error(t, ValidateHoliday(&domain.Holiday{Kind: "bank", Description: "x"}))

	blank := &domain.Holiday{Kind: domain.HolidayLocal, Description: "  "}
	assert.NoError(t, ValidateHoliday(blank))
	assert.Empty(t, blank.Description)
	assert.NoError(t, ValidateHoliday(&domain.Holiday{Kind: domain.HolidayWorking}))

	assert.Error(t, ValidateHoliday(&domain.Holiday{Kind: domain.HolidayLocal, Description: strings.Repeat("a", 201)}))
}
