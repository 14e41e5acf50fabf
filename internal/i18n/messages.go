package i18n

// Message keys used outside the error.* and warning.* families.
const (
	MountOpening       = "mount.opening"
	MountUsingMapper   = "mount.using_mapper"
	MountReusingMapper = "mount.reusing_mapper"
	MountCreatedDir    = "mount.created_mount_point"
	MountSuccess       = "mount.success"
	MountLabelDevice   = "mount.label_device"
	MountLabelPoint    = "mount.label_mount_point"
	MountLabelMapper   = "mount.label_mapper"
	MountLabelMode     = "mount.label_mode"
	MountModeReadOnly  = "mount.mode_read_only"
	MountModeReadWrite = "mount.mode_read_write"
	PromptPassphrase   = "prompt.passphrase"

	UnmountSuccess        = "unmount.success"
	UnmountFromMountTable = "unmount.from_mount_table"
	UnmountLocked         = "unmount.locked"

	ListEmpty            = "list.empty"
	ListStale            = "list.stale"
	ListTracked          = "list.tracked"
	ListUntracked        = "list.untracked"
	ListHeaderMountPoint = "list.header_mount_point"
	ListHeaderDevice     = "list.header_device"
	ListHeaderMapper     = "list.header_mapper"
	ListHeaderSize       = "list.header_size"
	ListHeaderUsed       = "list.header_used"
	ListHeaderState      = "list.header_state"
	PruneRemoved         = "prune.removed"
	PruneNone            = "prune.none"

	ErrorDetail         = "error.detail"
	IncorrectPassphrase = "error.incorrect_passphrase"
	ErrorRollbackFailed = "error.rollback_failed"
	HintRetryUnmount    = "hint.retry_unmount"
)

// ErrorKey returns the key for a failure of the named kind.
func ErrorKey(kind string) string { return "error." + kind }

// WarningKey returns the key for a warning of the named kind.
func WarningKey(kind string) string { return "warning." + kind }

type entry struct {
	key        string
	en, ko, ja string
}

var messages = []entry{
	// Failures. The single argument is the device or mount point.
	{"error.unknown", "Operation failed: %s", "작업 실패: %s", "操作に失敗しました: %s"},
	{"error.invalid_argument", "Invalid argument: %s", "잘못된 인자: %s", "無効な引数: %s"},
	{"error.permission_denied", "Permission denied for %s: run as root", "%s 권한 거부: root 권한으로 실행하세요", "%s へのアクセスが拒否されました: root で実行してください"},
	{"error.already_mounted", "Mount point is already in use: %s", "마운트 포인트가 이미 사용 중입니다: %s", "マウントポイントは既に使用中です: %s"},
	{"error.device_not_luks", "Not a LUKS device: %s", "LUKS 장치가 아닙니다: %s", "LUKS デバイスではありません: %s"},
	{"error.mount_point_creation_failed", "Mount point does not exist or cannot be created: %s", "마운트 포인트가 없거나 생성할 수 없습니다: %s", "マウントポイントが存在しないか作成できません: %s"},
	{"error.unlock_failed", "Failed to open LUKS device: %s", "LUKS 장치 열기 실패: %s", "LUKS デバイスを開けませんでした: %s"},
	{"error.mount_failed", "Mount failed, LUKS device closed again: %s", "마운트 실패, LUKS 장치를 다시 닫았습니다: %s", "マウントに失敗したため LUKS デバイスを閉じました: %s"},
	{"error.not_mounted", "No encrypted volume is mounted at %s", "%s에 마운트된 암호화 볼륨이 없습니다", "%s に暗号化ボリュームはマウントされていません"},
	{"error.unmount_failed", "Failed to unmount %s", "%s 언마운트 실패", "%s のアンマウントに失敗しました"},
	{"error.store_unavailable", "State directory is not usable: %s", "상태 디렉터리를 사용할 수 없습니다: %s", "状態ディレクトリを使用できません: %s"},
	{ErrorDetail, "  cause: %s", "  원인: %s", "  原因: %s"},
	{ErrorRollbackFailed, "  the LUKS device could not be closed and is still open: %s", "  LUKS 장치를 닫지 못해 열린 상태입니다: %s", "  LUKS デバイスを閉じられず、開いたままです: %s"},
	{IncorrectPassphrase, "Incorrect passphrase", "암호가 올바르지 않습니다", "パスフレーズが正しくありません"},

	// Warnings. The operation itself succeeded.
	{"warning.state_persist_failed", "Mounted, but the mount record could not be saved for %s", "마운트되었지만 %s의 기록을 저장하지 못했습니다", "マウントしましたが %s の記録を保存できませんでした"},
	{"warning.lock_failed", "Unmounted, but the LUKS device %s could not be closed", "언마운트되었지만 LUKS 장치 %s를 닫지 못했습니다", "アンマウントしましたが LUKS デバイス %s を閉じられませんでした"},
	{"warning.record_remove_failed", "Could not remove the mount record for %s", "%s의 마운트 기록을 삭제하지 못했습니다", "%s のマウント記録を削除できませんでした"},
	{"warning.stale_record", "Discarded a stale mount record for %s", "%s의 오래된 마운트 기록을 정리했습니다", "%s の古いマウント記録を破棄しました"},
	{"warning.risky_mount_option", "Option %s weakens the default nosuid,nodev hardening", "옵션 %s는 기본 nosuid,nodev 보안 설정을 약화시킵니다", "オプション %s は既定の nosuid,nodev 保護を弱めます"},
	{HintRetryUnmount, "Run the unmount command again to close the device", "장치를 닫으려면 언마운트 명령을 다시 실행하세요", "デバイスを閉じるにはアンマウントコマンドを再実行してください"},

	// Progress.
	{MountOpening, "Opening LUKS device %s", "LUKS 장치 여는 중: %s", "LUKS デバイスを開いています: %s"},
	{MountUsingMapper, "Using mapper %s", "매퍼 사용: %s", "マッパーを使用: %s"},
	{MountReusingMapper, "LUKS device already open as %s, mounting it", "LUKS 장치가 이미 %s로 열려 있어 그대로 마운트합니다", "LUKS デバイスは既に %s として開かれているためそのままマウントします"},
	{MountCreatedDir, "Created mount point %s", "마운트 포인트 생성: %s", "マウントポイントを作成しました: %s"},
	{MountSuccess, "Mounted successfully", "마운트 완료", "マウントしました"},
	{MountLabelDevice, "Device", "장치", "デバイス"},
	{MountLabelPoint, "Mount point", "마운트 포인트", "マウントポイント"},
	{MountLabelMapper, "Mapper", "매퍼", "マッパー"},
	{MountLabelMode, "Mode", "모드", "モード"},
	{MountModeReadOnly, "read-only", "읽기 전용", "読み取り専用"},
	{MountModeReadWrite, "read-write", "읽기/쓰기", "読み書き"},
	{PromptPassphrase, "Enter passphrase for %s: ", "%s의 암호 입력: ", "%s のパスフレーズを入力: "},

	{UnmountSuccess, "Unmounted %s", "%s 언마운트 완료", "%s をアンマウントしました"},
	{UnmountFromMountTable, "No mount record found, using mapper %s from the mount table", "마운트 기록이 없어 마운트 테이블의 매퍼 %s를 사용합니다", "マウント記録がないため、マウントテーブルのマッパー %s を使用します"},
	{UnmountLocked, "LUKS device %s closed", "LUKS 장치 %s 닫힘", "LUKS デバイス %s を閉じました"},

	{ListEmpty, "No encrypted volumes mounted", "마운트된 암호화 볼륨이 없습니다", "マウントされた暗号化ボリュームはありません"},
	{ListStale, "stale", "오래됨", "古い記録"},
	{ListTracked, "mounted", "마운트됨", "マウント中"},
	{ListUntracked, "untracked", "기록 없음", "記録なし"},
	{ListHeaderMountPoint, "MOUNT POINT", "마운트 지점", "マウントポイント"},
	{ListHeaderDevice, "DEVICE", "장치", "デバイス"},
	{ListHeaderMapper, "MAPPER", "매퍼", "マッパー"},
	{ListHeaderSize, "SIZE", "크기", "サイズ"},
	{ListHeaderUsed, "USED", "사용량", "使用量"},
	{ListHeaderState, "STATE", "상태", "状態"},
	{PruneRemoved, "Removed stale record for %s", "%s의 오래된 기록을 삭제했습니다", "%s の古い記録を削除しました"},
	{PruneNone, "No stale records", "오래된 기록이 없습니다", "古い記録はありません"},
}
