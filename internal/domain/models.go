package domain

// AdminUserID - идентификатор единственного администратора блога.
const AdminUserID uint = 1

// DateLayout - формат даты поста, например "October 19, 2026".
const DateLayout = "January 02, 2006"

// User представляет зарегистрированного пользователя.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"type:varchar(250);uniqueIndex;not null"`
	Name         string `json:"name" gorm:"type:varchar(250);not null"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(250);not null"`
	// IsAdmin выставляет только хранилище и только для AdminUserID.
	IsAdmin bool `json:"isAdmin" gorm:"not null;default:false"`
}

// Post представляет пост в блоге.
type Post struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Title    string `json:"title" gorm:"type:varchar(250);uniqueIndex;not null"`
	Subtitle string `json:"subtitle" gorm:"type:varchar(250);not null"`
	Date     string `json:"date" gorm:"type:varchar(250);not null"`
	Body     string `json:"body" gorm:"type:text;not null"`
	Author   string `json:"author" gorm:"type:varchar(250);not null"`
	ImgURL   string `json:"imgUrl" gorm:"column:img_url;type:varchar(250);not null"`
}

// TableName сохраняет имя таблицы из исходной схемы.
func (Post) TableName() string { return "blog_posts" }

// Comment представляет комментарий к посту.
type Comment struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Text     string `json:"text" gorm:"type:text;not null"`
	AuthorID uint   `json:"authorId" gorm:"not null;index"`
	PostID   uint   `json:"postId" gorm:"not null;index"`

	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT"` // gorm only
	Post   *Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`    // gorm only
}

// PostFields - редактируемые поля поста.
type PostFields struct {
	Title    string `json:"title" validate:"notblank,max=250"`
	Subtitle string `json:"subtitle" validate:"notblank,max=250"`
	Author   string `json:"author" validate:"notblank,max=250"`
	ImgURL   string `json:"imgUrl" validate:"required,http_url,max=250"`
	Body     string `json:"body" validate:"notblank"`
}

// Apply переносит поля в пост, не трогая ID и дату.
func (f PostFields) Apply(p *Post) {
	p.Title = f.Title
	p.Subtitle = f.Subtitle
	p.Author = f.Author
	p.ImgURL = f.ImgURL
	p.Body = f.Body
}

// CommentView - комментарий вместе с именем автора для отображения.
type CommentView struct {
	*Comment
	AuthorName string `json:"authorName"`
}

// PostDetail - пост со всеми комментариями.
type PostDetail struct {
	*Post
	Comments []*CommentView `json:"comments"`
}
