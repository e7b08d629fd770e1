package archive

import "fmt"

// Backend is the implementation chosen to read a container.
type Backend int

// Backends.
const (
	BackendNone Backend = iota
	BackendZip
	BackendTar
	BackendSevenZip
	BackendUnrar
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendZip:
		return "zip"
	case BackendTar:
		return "tar"
	case BackendSevenZip:
		return "7-zip"
	case BackendUnrar:
		return "unrar"
	case BackendNone:
		return "none"
	default:
		return "none"
	}
}

// SelectBackend picks how a container of the given kind is read:
//
//   - tar is always read in-process.
//   - zip is read in-process unless ForceSevenZip is set.
//   - 7z needs 7-Zip.
//   - RAR uses UnRAR when ForceUnrar is set, 7-Zip when ForceSevenZip is set,
//     and otherwise UnRAR if present, falling back to 7-Zip.
//
// A forced tool that is missing is an error rather than a silent fallback.
func SelectBackend(kind Kind, opts Options) (Backend, error) {
	hasSevenZip := opts.Tools.SevenZip != ""
	hasUnrar := opts.Tools.Unrar != ""

	switch kind {
	case KindTar:
		return BackendTar, nil
	case KindZip:
		if !opts.ForceSevenZip {
			return BackendZip, nil
		}

		if hasSevenZip {
			return BackendSevenZip, nil
		}

		return BackendNone, fmt.Errorf("%w: 7-Zip forced but not found", ErrNoTool)
	case KindSevenZip:
		if hasSevenZip {
			return BackendSevenZip, nil
		}

		return BackendNone, fmt.Errorf("%w: 7z archives need 7-Zip", ErrNoTool)
	case KindRar:
		return selectRarBackend(opts.ForceSevenZip, opts.ForceUnrar, hasSevenZip, hasUnrar)
	case KindUnknown:
		return BackendNone, ErrUnknownFormat
	default:
		return BackendNone, ErrUnknownFormat
	}
}

func selectRarBackend(forceSevenZip, forceUnrar, hasSevenZip, hasUnrar bool) (Backend, error) {
	switch {
	case forceUnrar && forceSevenZip:
		return BackendNone, fmt.Errorf("%w: both UnRAR and 7-Zip forced", ErrNoTool)
	case forceUnrar:
		if hasUnrar {
			return BackendUnrar, nil
		}

		return BackendNone, fmt.Errorf("%w: UnRAR forced but not found", ErrNoTool)
	case forceSevenZip:
		if hasSevenZip {
			return BackendSevenZip, nil
		}

		return BackendNone, fmt.Errorf("%w: 7-Zip forced but not found", ErrNoTool)
	case hasUnrar:
		return BackendUnrar, nil
	case hasSevenZip:
		return BackendSevenZip, nil
	default:
		return BackendNone, fmt.Errorf("%w: RAR archives need UnRAR or 7-Zip", ErrNoTool)
	}
}
