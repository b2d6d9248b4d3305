package store

// Account status values for User.AkunStatus.
const (
	AkunAktif    = "Aktif"
	AkunNonaktif = "Nonaktif"
)

// User is a registered library member. Field names on the wire follow the
// camelCase convention; columns use the snake_case convention
// (nama_lengkap <-> namaLengkap, akun_status <-> akunStatus).
type User struct {
	ID          int64  `json:"id"`
	NamaLengkap string `json:"namaLengkap"`
	Status      string `json:"status"`
	Alamat      string `json:"alamat"`
	Telepon     string `json:"telepon"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	AkunStatus  string `json:"akunStatus"`
	Foto        string `json:"foto"`
	CreatedAt   int64  `json:"createdAt"`
}

// ChatMessage is one entry in the flat message log. ConversationID is the id
// of the user whose conversation the message belongs to, for both user-sent
// messages and admin replies; legacy rows imported from the old data model
// carry 0 and only a free-text sender.
type ChatMessage struct {
	ID             int64  `json:"id"`
	ClientMsgID    string `json:"clientMsgId"`
	Pengirim       string `json:"pengirim"`
	Pesan          string `json:"pesan"`
	IsAdmin        bool   `json:"isAdmin"`
	ConversationID int64  `json:"conversationId"` // 0 = unknown (legacy row)
	CreatedAt      int64  `json:"createdAt"`
}

// ChatRead holds per-user read watermarks for both sides of a thread.
type ChatRead struct {
	UserID      int64 `json:"userId"`
	AdminReadAt int64 `json:"adminReadAt"`
	UserReadAt  int64 `json:"userReadAt"`
}

// Notification is created when new content is published and consumed by the
// end-user dashboard.
type Notification struct {
	ID        int64  `json:"id"`
	Tipe      string `json:"tipe"`
	Judul     string `json:"judul"`
	Pesan     string `json:"pesan"`
	Dibaca    bool   `json:"dibaca"`
	CreatedAt int64  `json:"createdAt"`
}

// Settings is the singleton configuration record. Revisi increases on every
// save so a stale cached copy can be detected.
type Settings struct {
	NamaPerpustakaan string `json:"namaPerpustakaan"`
	AdminPassword    string `json:"adminPassword"`
	LoginLogo        string `json:"loginLogo"`
	AdminPhoto       string `json:"adminPhoto"`
	Revisi           int64  `json:"revisi"`
}

// Kind identifies a content collection.
type Kind string

const (
	KindBuletin      Kind = "buletin"
	KindKaryaTulis   Kind = "karya_tulis"
	KindBukuUmum     Kind = "buku_umum"
	KindKaryaAsatidz Kind = "karya_asatidz"
	KindMateriDakwah Kind = "materi_dakwah"
	KindKhutbahJumat Kind = "khutbah_jumat"
	KindInformasi    Kind = "informasi"
	KindBanner       Kind = "banner"
	KindArtikel      Kind = "artikel"
)

// Kinds lists every content collection served by the CRUD surface.
var Kinds = []Kind{
	KindBuletin,
	KindKaryaTulis,
	KindBukuUmum,
	KindKaryaAsatidz,
	KindMateriDakwah,
	KindKhutbahJumat,
	KindInformasi,
	KindBanner,
	KindArtikel,
}

// Valid reports whether k names a known content collection.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ContentItem is one row of any content collection. All collections share
// the same shape; Kind selects the collection.
type ContentItem struct {
	ID        int64  `json:"id"`
	Kind      Kind   `json:"kind"`
	Judul     string `json:"judul"`
	Deskripsi string `json:"deskripsi"`
	Kategori  string `json:"kategori"`
	Penulis   string `json:"penulis"`
	FileURL   string `json:"fileUrl"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt int64  `json:"createdAt"`
}

// LiveStream is the singleton live-broadcast record shown on the portal.
type LiveStream struct {
	Judul     string `json:"judul"`
	URL       string `json:"url"`
	Aktif     bool   `json:"aktif"`
	UpdatedAt int64  `json:"updatedAt"`
}
