package room

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/marufkhan776/chillman/internal/domain"
	"github.com/marufkhan776/chillman/pkg/videoref"
	"github.com/marufkhan776/chillman/pkg/ytvideodata"
)

// resolveVideo must not be called while holding a room lock: the title lookup
// goes over the network.
func (s service) resolveVideo(ctx context.Context, rawURL string) (domain.Video, error) {
	ref, err := videoref.Resolve(rawURL)
	if err != nil {
		return domain.Video{}, fmt.Errorf("%w: %w", ErrInvalidVideo, err)
	}

	video := domain.Video{
		SourceURL:  strings.TrimSpace(rawURL),
		Kind:       domain.VideoKind(ref.Kind),
		ResolvedId: ref.Id,
	}

	if s.videoData == nil || ref.Kind != videoref.KindYoutube {
		return video, nil
	}

	data, err := s.videoData.Get(ctx, ref.Id)
	if err != nil {
		if errors.Is(err, ytvideodata.ErrVideoNotFound) {
			return domain.Video{}, fmt.Errorf("%w: %w", ErrInvalidVideo, err)
		}
		s.logger.WarnContext(ctx, "failed to get video metadata", "video_id", ref.Id, "error", err)
		return video, nil
	}

	video.Title = data.Title
	return video, nil
}
