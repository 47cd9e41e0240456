// Package config merges command line flags, the environment and what can be
// detected from the project tree into one build description.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"resbuild/internal/project"
)

const (
	// ErrCodeProjectMissing means the project directory is absent or not a directory.
	ErrCodeProjectMissing = "project_missing"
	// ErrCodeEnvFile means the .env file exists but could not be parsed.
	ErrCodeEnvFile = "env_file_invalid"
	// ErrCodeInvalid means a flag or variable holds an unusable value.
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultMinSdk    = 21
	DefaultTargetSdk = 33
)

// Environment variables read when the matching flag is not given.
const (
	EnvAndroidJar = "RESBUILD_ANDROID_JAR"
	EnvAapt2      = "RESBUILD_AAPT2"
	EnvMinSdk     = "RESBUILD_MIN_SDK"
	EnvTargetSdk  = "RESBUILD_TARGET_SDK"
)

// Flags holds the raw command line. Zero values mean "not given".
type Flags struct {
	ProjectDir string
	Res        string
	Build      string
	Manifest   string
	AndroidJar string
	Aapt2      string
	Libs       []string
	MinSdk     int
	TargetSdk  int
	DiffBytes  int64
	Debug      bool
	EnvFile    string
}

// Effective is the merged configuration the build consumes directly.
type Effective struct {
	ProjectDir string
	Res        string
	Build      string
	Manifest   string
	AndroidJar string
	Aapt2      string
	Libs       []string
	MinSdk     int
	TargetSdk  int
	// SdkSource names the file the SDK levels were detected from, if any.
	SdkSource string
	DiffBytes int64
	Debug     bool
}

// Project returns the project description for the pipeline.
func (e Effective) Project() project.Static {
	return project.Static{
		Res:      e.Res,
		Build:    e.Build,
		Min:      e.MinSdk,
		Target:   e.TargetSdk,
		Libs:     append([]string(nil), e.Libs...),
		Manifest: e.Manifest,
	}
}

// Error is a structured configuration error.
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEnv loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &Error{Code: ErrCodeEnvFile, Path: path, Err: err}
	}
	return nil
}

// Load reads the .env file named by f and resolves f against the process
// environment.
func Load(f Flags) (Effective, error) {
	if err := LoadEnv(f.EnvFile); err != nil {
		return Effective{}, err
	}
	return Resolve(f, os.Getenv)
}

// Resolve merges f with the variables visible through getenv.
//
// Precedence is flag, then environment, then what the project declares
// (build.gradle or the manifest uses-sdk), then the built-in defaults.
func Resolve(f Flags, getenv func(string) string) (Effective, error) {
	if f.ProjectDir == "" {
		return Effective{}, &Error{Code: ErrCodeProjectMissing, Err: errors.New("no project directory given")}
	}
	root, err := filepath.Abs(f.ProjectDir)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: f.ProjectDir, Err: err}
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return Effective{}, &Error{Code: ErrCodeProjectMissing, Path: root, Err: err}
	}
	if f.DiffBytes < 0 {
		return Effective{}, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("diff bytes must not be negative, got %d", f.DiffBytes)}
	}

	e := Effective{
		ProjectDir: root,
		Res:        firstNonEmpty(f.Res, filepath.Join(root, "src", "main", "res")),
		Build:      firstNonEmpty(f.Build, filepath.Join(root, "build")),
		AndroidJar: firstNonEmpty(f.AndroidJar, strings.TrimSpace(getenv(EnvAndroidJar))),
		Aapt2:      firstNonEmpty(f.Aapt2, strings.TrimSpace(getenv(EnvAapt2))),
		Libs:       append([]string(nil), f.Libs...),
		DiffBytes:  f.DiffBytes,
		Debug:      f.Debug,
	}
	e.Manifest = firstNonEmpty(f.Manifest, filepath.Join(e.Build, "bin", "AndroidManifest.xml"))

	if e.MinSdk, err = sdkLevel(f.MinSdk, getenv, EnvMinSdk); err != nil {
		return Effective{}, err
	}
	if e.TargetSdk, err = sdkLevel(f.TargetSdk, getenv, EnvTargetSdk); err != nil {
		return Effective{}, err
	}
	if e.MinSdk == 0 || e.TargetSdk == 0 {
		info := project.DetectSdk(root)
		if e.MinSdk == 0 && info.MinSdk > 0 {
			e.MinSdk = info.MinSdk
			e.SdkSource = info.Source
		}
		if e.TargetSdk == 0 && info.TargetSdk > 0 {
			e.TargetSdk = info.TargetSdk
			e.SdkSource = info.Source
		}
	}
	if e.MinSdk == 0 {
		e.MinSdk = DefaultMinSdk
	}
	if e.TargetSdk == 0 {
		e.TargetSdk = max(DefaultTargetSdk, e.MinSdk)
	}
	if e.MinSdk > e.TargetSdk {
		return Effective{}, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("min sdk %d exceeds target sdk %d", e.MinSdk, e.TargetSdk)}
	}
	return e, nil
}

func sdkLevel(flagValue int, getenv func(string) string, key string) (int, error) {
	if flagValue < 0 {
		return 0, &Error{Code: ErrCodeInvalid, Err: fmt.Errorf("sdk level must be positive, got %d", flagValue)}
	}
	if flagValue > 0 {
		return flagValue, nil
	}
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &Error{Code: ErrCodeInvalid, Path: key, Err: fmt.Errorf("invalid sdk level %q", raw)}
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
