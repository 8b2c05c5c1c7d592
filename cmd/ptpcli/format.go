package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/defiant-labs/ptpfs/internal/ptpwire"
)

// ptpTimeLayout is the PIMA 15740:2000 DateTime string format:
// "YYYYMMDDThhmmss[.s][UTC offset]". The fractional-second and UTC
// suffix are stripped before parsing since the listing only needs
// second resolution.
const ptpTimeLayout = "20060102T150405"

// objectTimestamp derives the timestamp ptpcli uses in a listing's
// name column: CaptureDate, falling back to ModificationDate, falling
// back to the local time at listing time (§6.4 download bullet,
// applied uniformly to list).
func objectTimestamp(info ptpwire.ObjectInfo, now time.Time) time.Time {
	for _, raw := range []string{info.CaptureDate, info.ModificationDate} {
		if t, ok := parsePTPTime(raw); ok {
			return t
		}
	}
	return now
}

func parsePTPTime(raw string) (time.Time, bool) {
	if len(raw) < len(ptpTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ptpTimeLayout, raw[:len(ptpTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// timestampedFilename builds "<timestamp>_<device-reported name>", the
// convention used both for local download filenames and the list
// command's display name.
func timestampedFilename(info ptpwire.ObjectInfo, now time.Time) string {
	ts := objectTimestamp(info, now)
	return fmt.Sprintf("%s_%s", ts.Format("20060102-150405"), info.Filename)
}

// permString renders ProtectionStatus as a coarse rwx-style string:
// PTP protection is binary (writable or not) plus a "no delete"
// variant, not a full POSIX mode, so three shapes cover the known
// statuses and any other status renders as "----".
func permString(info ptpwire.ObjectInfo) string {
	switch info.ProtectionStatus {
	case 0x0000:
		return "-rw-"
	case 0x0001:
		return "-r--"
	case 0x8002:
		return "-r-d" // read-only, deletable (MTP NoDelete-unset ReadOnly)
	default:
		return "----"
	}
}

// dimensionString renders "<W>x<H>x<D>", 0 for any dimension the
// device did not report.
func dimensionString(info ptpwire.ObjectInfo) string {
	return fmt.Sprintf("%dx%dx%d", info.ImagePixWidth, info.ImagePixHeight, info.ImageBitDepth)
}

// formatString renders an object's format code as a short label:
// its local download extension if the format-to-extension map knows
// one, else the raw hex code.
func formatString(format uint16) string {
	if ext := ptpwire.ExtensionForObjectFormat(format); ext != "" {
		return strings.TrimPrefix(ext, ".")
	}
	return fmt.Sprintf("0x%04x", format)
}

// listingLine renders one object as "<perm> <size> <timestamped-name>
// <raw-name> <WxHxD> <format>" (§6.4).
func listingLine(info ptpwire.ObjectInfo, now time.Time) string {
	return fmt.Sprintf("%s %10d %s %s %s %s",
		permString(info),
		info.CompressedSize,
		timestampedFilename(info, now),
		info.Filename,
		dimensionString(info),
		formatString(info.ObjectFormat),
	)
}
