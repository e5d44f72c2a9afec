package service

import (
	"testing"
	"work-time-bot/internal/errs"
	"work-time-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeService(env *testEnv) *EmployeeService {
	return NewEmployeeService(env.employeeRepo, EmployeeDefaults{
		Region:       "BY",
		WeeklyHours:  40,
		VacationDays: 30,
	})
}

func TestEmployeeRegisterUsesDefaults(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	s := newEmployeeService(env)

	employee, err := s.Register(100, "anna", " Anna ", "Schmidt")
	require.NoError(t, err)
	assert.Equal(t, models.RoleClient, employee.Role)
	assert.Equal(t, "BY", employee.Region)
	assert.Equal(t, 40.0, employee.WeeklyHours)
	assert.Equal(t, "Anna Schmidt", employee.FullName())

	_, err = s.Register(100, "anna", "Anna", "")
	require.Error(t, err)

	_, err = s.Register(101, "", "  ", "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = s.GetByChatID(555)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestEmployeeSetWorkParams(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	s := newEmployeeService(env)
	_, err := s.Register(100, "anna", "Anna", "")
	require.NoError(t, err)

	employee, err := s.SetWorkParams(100, WorkParams{WeeklyHours: 30, Region: "BE", VacationDays: 28})
	require.NoError(t, err)
	assert.Equal(t, 30.0, employee.WeeklyHours)
	assert.Equal(t, "BE", employee.Region)

	_, err = s.SetWorkParams(100, WorkParams{WeeklyHours: 0, Region: "XX", VacationDays: -1})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)

	_, err = s.SetWorkParams(555, WorkParams{WeeklyHours: 40, Region: "BY"})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestEmployeeRolesAndAdminBootstrap(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	s := newEmployeeService(env)

	require.NoError(t, s.InitializeAdmin(1))
	isAdmin, err := s.IsAdmin(1)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	_, err = s.Register(2, "bob", "Bob", "")
	require.NoError(t, err)
	require.NoError(t, s.UpdateRole(2, models.RoleAdmin))
	isAdmin, err = s.IsAdmin(2)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	assert.Equal(t, errs.KindValidation, errs.KindOf(s.UpdateRole(2, "root")))

	// повторный запуск не создает второго администратора
	require.NoError(t, s.InitializeAdmin(1))
	all, err := s.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, FormatEmployees(all), "Bob")
}

func TestEmployeeUpdateName(t *testing.T) {
	env := newTestEnv(t, models.NewDate(2026, 3, 18))
	s := newEmployeeService(env)
	_, err := s.Register(100, "anna", "Anna", "")
	require.NoError(t, err)

	employee, err := s.UpdateName(100, "anna_s", "Anna", "Schmidt")
	require.NoError(t, err)
	assert.Equal(t, "Anna Schmidt", employee.FullName())

	_, err = s.UpdateName(100, "", "", "")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
