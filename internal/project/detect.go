package project

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// SdkInfo is the SDK levels declared by a project, with where they came from.
// Zero means "not declared".
type SdkInfo struct {
	MinSdk    int
	TargetSdk int
	Source    string // file the values were read from, "" if none
}

// DetectSdk probes the module rooted at root for declared SDK levels.
//
// Priority (first file declaring anything wins): Gradle build script at the
// root, Gradle build script under app/, then the source manifest.
// Best-effort: unreadable or malformed files are skipped.
func DetectSdk(root string) SdkInfo {
	absRoot, _ := filepath.Abs(root)

	// 1) Gradle (build.gradle, build.gradle.kts), module root or app/
	for _, dir := range []string{absRoot, filepath.Join(absRoot, "app")} {
		if p := firstExisting(dir, "build.gradle", "build.gradle.kts"); p != "" {
			if inf, ok := detectGradle(p); ok {
				return inf
			}
		}
	}

	// 2) Manifest <uses-sdk>
	for _, rel := range []string{"src/main/AndroidManifest.xml", "AndroidManifest.xml"} {
		p := filepath.Join(absRoot, filepath.FromSlash(rel))
		if inf, ok := detectManifest(p); ok {
			return inf
		}
	}

	return SdkInfo{}
}

// ------------------------------ Gradle ---------------------------------------

var (
	reGradleMinSdk    = regexp.MustCompile(`(?m)^\s*minSdk(?:Version)?\s*(?:=\s*)?\(?\s*(\d{1,3})`)
	reGradleTargetSdk = regexp.MustCompile(`(?m)^\s*targetSdk(?:Version)?\s*(?:=\s*)?\(?\s*(\d{1,3})`)
)

func detectGradle(path string) (SdkInfo, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SdkInfo{}, false
	}
	text := string(b)
	inf := SdkInfo{
		MinSdk:    firstInt(reGradleMinSdk, text),
		TargetSdk: firstInt(reGradleTargetSdk, text),
		Source:    path,
	}
	return inf, inf.MinSdk != 0 || inf.TargetSdk != 0
}

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// ------------------------------ Manifest -------------------------------------

type manifestXML struct {
	XMLName xml.Name `xml:"manifest"`
	UsesSdk struct {
		Min    string `xml:"http://schemas.android.com/apk/res/android minSdkVersion,attr"`
		Target string `xml:"http://schemas.android.com/apk/res/android targetSdkVersion,attr"`
	} `xml:"uses-sdk"`
}

func detectManifest(path string) (SdkInfo, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SdkInfo{}, false
	}
	var m manifestXML
	if err := xml.Unmarshal(b, &m); err != nil {
		return SdkInfo{}, false
	}
	minSdk, _ := strconv.Atoi(m.UsesSdk.Min)
	target, _ := strconv.Atoi(m.UsesSdk.Target)
	if minSdk == 0 && target == 0 {
		return SdkInfo{}, false
	}
	return SdkInfo{MinSdk: minSdk, TargetSdk: target, Source: path}, true
}

// ---------------------------- helpers ---------------------------------------

func firstExisting(root string, names ...string) string {
	for _, n := range names {
		p := filepath.Join(root, n)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}
