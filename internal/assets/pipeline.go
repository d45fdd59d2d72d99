// Package assets stores uploaded images and videos and resizes images.
package assets

import (
	"context"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"storefront/internal/outcome"
)

// Role names the slot an upload fills. It prefixes the stored filename.
type Role string

const (
	RoleLogo       Role = "logo"
	RoleBackground Role = "bg"
	RoleProduct    Role = "product"
	RoleVideo      Role = "video"
)

// allowedExtensions is shared by every slot.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"mp4": true, "mov": true, "avi": true, "mkv": true, "webm": true,
}

// Accept reports whether filename has an allowed extension.
func Accept(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if filename == "" || i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// Stored describes a saved upload.
type Stored struct {
	// Name is the filename relative to the upload directory.
	Name string
	// CDNURL and PublicID are set when a mirror accepted the file.
	CDNURL   string
	PublicID string
}

// Pipeline writes uploads into one directory.
type Pipeline struct {
	dir    string
	mirror Mirror
	logger *zap.Logger
	token  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMirror copies accepted images to m after resizing.
func WithMirror(m Mirror) Option {
	return func(p *Pipeline) { p.mirror = m }
}

// New returns a pipeline storing files in dir.
func New(dir string, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{dir: dir, logger: logger, token: uuid.NewString}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the upload directory.
func (p *Pipeline) Dir() string { return p.dir }

// Save stores fh for role. It returns Skipped when no file was sent and
// Rejected when the extension is not allowed; in both cases nothing is
// written. Resize and mirror failures are logged and do not change the
// outcome.
func (p *Pipeline) Save(ctx context.Context, role Role, fh *multipart.FileHeader) (Stored, outcome.Outcome, error) {
	if fh == nil || fh.Filename == "" {
		return Stored{}, outcome.Skipped, nil
	}
	if !Accept(fh.Filename) {
		p.logger.Info("upload rejected", zap.String("role", string(role)), zap.String("filename", fh.Filename))
		return Stored{}, outcome.Rejected, nil
	}

	name := p.filename(role, fh.Filename)
	path := filepath.Join(p.dir, name)
	if err := p.write(fh, path); err != nil {
		return Stored{}, outcome.Skipped, err
	}
	stored := Stored{Name: name}

	if mode := modeFor(role); mode != ModeNone {
		if err := Resize(path, mode); err != nil {
			p.logger.Warn("resize failed, keeping original", zap.String("path", path), zap.Error(err))
		}
		if p.mirror != nil {
			publicID := strings.TrimSuffix(name, filepath.Ext(name))
			url, err := p.mirror.Upload(ctx, path, publicID)
			if err != nil {
				p.logger.Warn("mirror upload failed", zap.String("path", path), zap.Error(err))
			} else {
				stored.CDNURL = url
				stored.PublicID = publicID
			}
		}
	}

	p.logger.Info("upload stored", zap.String("role", string(role)), zap.String("name", name))
	return stored, outcome.Applied, nil
}

// Forget removes a mirrored copy. Local files are kept.
func (p *Pipeline) Forget(ctx context.Context, publicID string) {
	if p.mirror == nil || publicID == "" {
		return
	}
	if err := p.mirror.Destroy(ctx, publicID); err != nil {
		p.logger.Warn("mirror destroy failed", zap.String("public_id", publicID), zap.Error(err))
		return
	}
	p.logger.Info("mirror destroyed", zap.String("public_id", publicID))
}

func (p *Pipeline) filename(role Role, original string) string {
	return string(role) + "_" + p.token() + "_" + secureFilename(original)
}

func (p *Pipeline) write(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return errors.Wrapf(err, "mkdir %s", p.dir)
	}
	dst, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return dst.Close()
}

func modeFor(role Role) Mode {
	switch role {
	case RoleLogo:
		return ModeLogo
	case RoleBackground:
		return ModeBackground
	case RoleProduct:
		return ModeProductImage
	default:
		return ModeNone
	}
}

// secureFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func secureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}
