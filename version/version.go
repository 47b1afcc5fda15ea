// Package version enumerates the language versions a Context may select
// and the per-version feature-flag defaults (§3, §6 of the data model).
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is one of the dialects a Context can be configured for.
type Version int

const (
	UNKNOWN Version = iota
	DEFAULT
	V1_0
	V1_1
	V1_2
	V1_3
	V1_4
	V1_5
	V1_6
	V1_7
	V1_8
	ES6
	ECMASCRIPT
)

var names = map[Version]string{
	UNKNOWN:    "UNKNOWN",
	DEFAULT:    "DEFAULT",
	V1_0:       "1.0",
	V1_1:       "1.1",
	V1_2:       "1.2",
	V1_3:       "1.3",
	V1_4:       "1.4",
	V1_5:       "1.5",
	V1_6:       "1.6",
	V1_7:       "1.7",
	V1_8:       "1.8",
	ES6:        "ES6",
	ECMASCRIPT: "ECMASCRIPT",
}

func (v Version) String() string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// semverOf maps the numbered dialects onto a semver.Version so that
// ordering questions ("is this version at least 1.5?") can be answered
// with a real comparator instead of hand-rolled integer arithmetic.
var semverOf = map[Version]*semver.Version{
	V1_0: semver.MustParse("1.0.0"),
	V1_1: semver.MustParse("1.1.0"),
	V1_2: semver.MustParse("1.2.0"),
	V1_3: semver.MustParse("1.3.0"),
	V1_4: semver.MustParse("1.4.0"),
	V1_5: semver.MustParse("1.5.0"),
	V1_6: semver.MustParse("1.6.0"),
	V1_7: semver.MustParse("1.7.0"),
	V1_8: semver.MustParse("1.8.0"),
}

// AtLeast reports whether v is one of the numbered dialects and is ordered
// at or above want. ES6, ECMASCRIPT, DEFAULT and UNKNOWN are sentinels
// outside the semver ordering: ES6/ECMASCRIPT are always "at least" any
// numbered dialect, DEFAULT/UNKNOWN never are.
func (v Version) AtLeast(want Version) bool {
	if v == ES6 || v == ECMASCRIPT {
		return true
	}
	sv, ok := semverOf[v]
	if !ok {
		return false
	}
	sw, ok := semverOf[want]
	if !ok {
		return false
	}
	return sv.Compare(sw) >= 0
}

// Feature is one of the 22 boolean flags a Context exposes (§6).
type Feature int

const (
	NonEcmaGetYear Feature = iota
	MemberExprAsFunctionName
	ReservedKeywordAsIdentifier
	ToStringAsSource
	ParentProtoProperties
	E4X
	DynamicScope
	StrictVars
	StrictEval
	LocationInformationInError
	StrictMode
	WarningAsError
	EnhancedJavaAccess
	V8Extensions
	OldUndefNullThis
	EnumerateIDsFirst
	ThreadSafeObjects
	IntegerWithoutDecimalPlace
	LittleEndian
	EnableXMLSecureParsing
	EnableJavaMapAccess
	Intl402
)

// Defaults returns the has-feature table for a given language version.
// StrictMode implies StrictVars and StrictEval, per §6.
func Defaults(v Version) map[Feature]bool {
	d := map[Feature]bool{
		NonEcmaGetYear:              !v.AtLeast(V1_3),
		MemberExprAsFunctionName:    false,
		ReservedKeywordAsIdentifier: v == V1_0 || v == UNKNOWN,
		ToStringAsSource:            v != UNKNOWN && !v.AtLeast(V1_5),
		ParentProtoProperties:       true,
		E4X:                         false,
		DynamicScope:                false,
		StrictVars:                  false,
		StrictEval:                  false,
		LocationInformationInError:  true,
		StrictMode:                  false,
		WarningAsError:              false,
		EnhancedJavaAccess:          false,
		V8Extensions:                false,
		OldUndefNullThis:            false,
		EnumerateIDsFirst:           v == ES6 || v == ECMASCRIPT,
		ThreadSafeObjects:           false,
		IntegerWithoutDecimalPlace:  false,
		LittleEndian:                true,
		EnableXMLSecureParsing:      true,
		EnableJavaMapAccess:         false,
		Intl402:                     v == ES6 || v == ECMASCRIPT,
	}
	return d
}
