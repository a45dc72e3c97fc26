package common

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotEmpty(t *testing.T) {
	va := &NotEmptyValidator{}
	assert.False(t, va.Validate(""))
	assert.False(t, va.Validate(" "))
	assert.False(t, va.Validate("　"))
	assert.True(t, va.Validate(" abc "))
	assert.True(t, va.Validate("　a　"))
}

func TestPrintable(t *testing.T) {
	va := &PrintableValidator{}
	assert.True(t, va.Validate("hello-world"))
	assert.True(t, va.Validate("博客/2024"))
	assert.False(t, va.Validate("a\nb"))
	assert.False(t, va.Validate("a\x00"))
	assert.False(t, va.Validate(string([]byte{0xff, 0xfe})))
}

func TestInteger(t *testing.T) {
	va64 := &Int64Validator{min: -3, max: 10}
	assert.False(t, va64.Validate("a"))
	assert.False(t, va64.Validate("11"))
	assert.True(t, va64.Validate("10"))
	assert.True(t, va64.Validate("-3"))
	assert.True(t, va64.Validate(""))
}

func TestRegex(t *testing.T) {
	rv := &RegExValidator{pattern: regexp.MustCompile("^a+")}
	assert.True(t, rv.Validate("a"))
	assert.False(t, rv.Validate("1a"))
}

func TestNewValidatorByConf(t *testing.T) {
	v, err := NewValidatorByConf(map[string]string{"name": VSTRLEN, "min": "1", "max": "3"})
	require.NoError(t, err)
	assert.True(t, v.Validate("abc"))
	assert.False(t, v.Validate("abcd"))

	_, err = NewValidatorByConf(map[string]string{"name": VSTRLEN, "min": "3", "max": "1"})
	assert.Error(t, err)

	_, err = NewValidatorByConf(map[string]string{"name": "nope"})
	assert.Error(t, err)

	assert.Error(t, RegValidatorNewer(VNOTEMPTY, nil))
}

func TestRuleValidateService(t *testing.T) {
	conf := &ValidateRuleConfig{
		SName: "v",
		Rules: []RuleConfig{{
			Name:       "short",
			Desc:       "too long",
			Validators: []map[string]string{{"name": VNOTEMPTY}, {"name": VSTRLEN, "min": "1", "max": "2"}},
		}},
	}
	require.NoError(t, conf.Parse())
	require.NoError(t, conf.AddRuleIfAbsent(RuleConfig{Name: "short", Desc: "ignored"}))

	svc, err := NewRuleValidateService(conf)
	require.NoError(t, err)
	assert.Equal(t, "v", svc.Name())

	assert.NoError(t, svc.Validate("short", "ab"))
	err = svc.Validate("short", "abc")
	var verr *ValidateError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "too long", err.Error())

	assert.Error(t, svc.Validate("missing", "a"))
	err = ValidateAll(svc, &ValidatePair{Name: "short", Value: "", Msg: "empty"})
	assert.EqualError(t, err, "empty")
}
