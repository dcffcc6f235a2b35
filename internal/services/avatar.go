package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	_ "golang.org/x/image/webp"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const AvatarSize = 256

type AvatarService interface {
	// CreateAndUploadUserAvatar renders an initials avatar and points user at it.
	// The caller persists the user row.
	CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error
	// CreateAndUploadUserAvatarFromImage stores raw as the user's avatar after
	// cropping it square and scaling it to AvatarSize.
	CreateAndUploadUserAvatarFromImage(dbc dbctx.Context, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (*bytes.Buffer, error)
}

type avatarService struct {
	log           *logger.Logger
	bucketService gcp.BucketService
	clock         Clock
	fontFace      font.Face
}

var avatarPalette = []color.NRGBA{
	{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF},
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF},
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF},
	{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF},
	{R: 0x25, G: 0x63, B: 0xEB, A: 0xFF},
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF},
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF},
	{R: 0x0D, G: 0x94, B: 0x88, A: 0xFF},
}

func NewAvatarService(log *logger.Logger, bucketService gcp.BucketService, clock Clock) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")
	if bucketService == nil {
		return nil, fmt.Errorf("bucket service required")
	}
	face, err := loadFontFace(AvatarSize * 2 / 5)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	return &avatarService{
		log:           serviceLog,
		bucketService: bucketService,
		clock:         clockOrSystem(clock),
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(dbc dbctx.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("user required")
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.store(dbc, user, buf)
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(dbc dbctx.Context, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	processed, err := processUploadedAvatar(raw, AvatarSize)
	if err != nil {
		return apierr.Validation("invalid_image", err.Error())
	}
	return as.store(dbc, user, processed)
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (*bytes.Buffer, error) {
	const size = AvatarSize
	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.SetColor(avatarColorFor(user.ID))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(user.Initials(), float64(size)/2, float64(size)/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return &buf, nil
}

func (as *avatarService) store(dbc dbctx.Context, user *types.User, png *bytes.Buffer) error {
	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	// Versioned keys keep CDNs from serving a stale image.
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), as.clock.Now().UnixNano())

	if err := as.bucketService.UploadFile(dbc, gcp.BucketCategoryAvatar, newKey, bytes.NewReader(png.Bytes())); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(gcp.BucketCategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(dbc, gcp.BucketCategoryAvatar, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "old_key", oldKey, "error", err)
		}
	}
	return nil
}

func processUploadedAvatar(raw []byte, size int) (*bytes.Buffer, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	if side <= 0 {
		return nil, fmt.Errorf("image is empty")
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	src := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	dc := gg.NewContextForRGBA(dst)
	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return &out, nil
}

func avatarColorFor(id uuid.UUID) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return avatarPalette[int(h.Sum32()%uint32(len(avatarPalette)))]
}

func loadFontFace(points float64) (font.Face, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}
