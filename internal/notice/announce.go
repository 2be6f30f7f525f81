package notice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ebisawa/chatrelic/internal/ingest"
)

// OutboundRecorder archives text the bot sent. Implemented by
// ingest.Ingestor.
type OutboundRecorder interface {
	RecordOutbound(ctx context.Context, channelID int64, text string)
}

// Announcer turns group notices into channel celebration messages.
//
// Silent cases (kick_me, performer and emotion honors) produce nothing.
// A failed send is logged and the text is not archived; the archive only
// holds messages that actually reached the channel.
type Announcer struct {
	names    ingest.NameResolver
	notifier ingest.Notifier
	recorder OutboundRecorder
	logger   *slog.Logger
}

// NewAnnouncer wires an Announcer. A nil logger falls back to slog.Default.
func NewAnnouncer(names ingest.NameResolver, notifier ingest.Notifier, recorder OutboundRecorder, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{names: names, notifier: notifier, recorder: recorder, logger: logger}
}

// Admin announces an admin grant or revocation.
func (a *Announcer) Admin(ctx context.Context, n GroupAdmin) {
	userName := a.names.Resolve(ctx, n.GroupID, n.UserID)
	a.send(ctx, n.GroupID, renderAdmin(n.SubType, userName))
}

// Decrease announces a member leaving or being kicked. The bot being
// kicked is silent.
func (a *Announcer) Decrease(ctx context.Context, n GroupDecrease) {
	if n.SubType == DecreaseKickMe {
		return
	}
	userName := a.names.Resolve(ctx, n.GroupID, n.UserID)
	operatorName := a.names.Resolve(ctx, n.GroupID, n.OperatorID)
	a.send(ctx, n.GroupID, renderDecrease(n.SubType, userName, operatorName))
}

// Increase announces a member joining.
func (a *Announcer) Increase(ctx context.Context, n GroupIncrease) {
	userName := a.names.Resolve(ctx, n.GroupID, n.UserID)
	operatorName := a.names.Resolve(ctx, n.GroupID, n.OperatorID)
	a.send(ctx, n.GroupID, renderIncrease(n.SubType, userName, operatorName))
}

// Ban announces a mute or unmute.
func (a *Announcer) Ban(ctx context.Context, n GroupBan) {
	userName := a.names.Resolve(ctx, n.GroupID, n.UserID)
	operatorName := a.names.Resolve(ctx, n.GroupID, n.OperatorID)
	a.send(ctx, n.GroupID, renderBan(n.SubType, userName, operatorName, n.Duration))
}

// Honor announces the talkative honor. Other honors are silent.
func (a *Announcer) Honor(ctx context.Context, n Honor) {
	a.logger.Info("honor notice", "group", n.GroupID, "honor", n.HonorType)
	if n.HonorType != HonorTalkative {
		return
	}
	userName := a.names.Resolve(ctx, n.GroupID, n.UserID)
	a.send(ctx, n.GroupID, renderHonor(userName))
}

// Send delivers arbitrary text to a channel and archives it on success.
// Used for announcements and poke replies alike.
func (a *Announcer) Send(ctx context.Context, channelID int64, text string) {
	a.send(ctx, channelID, text)
}

func (a *Announcer) send(ctx context.Context, channelID int64, text string) {
	if err := a.notifier.Notify(ctx, channelID, text, ""); err != nil {
		a.logger.Error("send announcement",
			"channel", channelID,
			"error", err)
		return
	}
	a.recorder.RecordOutbound(ctx, channelID, text)
}

func renderAdmin(sub AdminSubType, userName string) string {
	if sub == AdminUnset {
		return fmt.Sprintf("%s被群主剥夺了管理员之力!", userName)
	}
	return fmt.Sprintf("%s被群主赐予了管理员之力!", userName)
}

func renderDecrease(sub DecreaseSubType, userName, operatorName string) string {
	if sub == DecreaseKick {
		return fmt.Sprintf("%s由于讨厌%s选择将所有人踢出群聊!", userName, operatorName)
	}
	return fmt.Sprintf("%s忍一时越想越气,退一步越想越亏,怒发冲冠下将所有人踢出了群聊!", userName)
}

func renderIncrease(sub IncreaseSubType, userName, operatorName string) string {
	if sub == IncreaseInvite {
		return fmt.Sprintf("%s在%s的苦苦哀求下加入了我们~", userName, operatorName)
	}
	return fmt.Sprintf("%s大发慈悲、勉为其难地允许了%s通过ta的入群申请~", userName, operatorName)
}

func renderBan(sub BanSubType, userName, operatorName string, duration int64) string {
	if sub == BanLiftBan {
		return fmt.Sprintf("%s哄好了%s,TA现在愿意和我们说话了!", operatorName, userName)
	}
	return fmt.Sprintf("%s因为讨厌%s决定在%d秒内冷暴力大家!", userName, operatorName, duration)
}

func renderHonor(userName string) string {
	return fmt.Sprintf("恭喜龙王%s登基!", userName)
}
