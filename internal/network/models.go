package network

// Page is the list envelope every collection endpoint returns.
type Page[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	Items      []T `json:"items"`
}

// ErrorEnvelope is the body the backend sends with 4xx responses.
type ErrorEnvelope struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type User struct {
	ID              string `json:"id"`
	CollectionID    string `json:"collectionId"`
	CollectionName  string `json:"collectionName"`
	Created         string `json:"created"`
	Updated         string `json:"updated"`
	EmailVisibility bool   `json:"emailVisibility"`
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Secondname      string `json:"secondname"`
	Verified        bool   `json:"verified"`
	DateBirthday    string `json:"datebirthday"`
	Gender          string `json:"gender"`
}

// ResponseRegister has the same shape as User; the backend echoes the new
// record.
type ResponseRegister User

type ResponseAuth struct {
	Record User   `json:"record"`
	Token  string `json:"token"`
}

// UserAuth is one record of the _authOrigins collection. RecordRef points
// at the user the origin belongs to.
type UserAuth struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	CollectionRef  string `json:"collectionRef"`
	Fingerprint    string `json:"fingerprint"`
	RecordRef      string `json:"recordRef"`
}

type News struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	NewsImage      string `json:"newsImage"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
}

// ProductItem is the short product form returned by the list endpoint.
type ProductItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Price      int    `json:"price"`
	TypeCloses string `json:"typeCloses"`
	Type       string `json:"type"`
}

type ProductAPI struct {
	ID              string `json:"id"`
	CollectionID    string `json:"collectionId"`
	CollectionName  string `json:"collectionName"`
	Created         string `json:"created"`
	Updated         string `json:"updated"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Price           int    `json:"price"`
	TypeCloses      string `json:"typeCloses"`
	Type            string `json:"type"`
	ApproximateCost string `json:"approximateCost"`
}

type ProjectAPI struct {
	ID                string `json:"id"`
	CollectionID      string `json:"collectionId"`
	CollectionName    string `json:"collectionName"`
	Created           string `json:"created"`
	Updated           string `json:"updated"`
	Title             string `json:"title"`
	DateStart         string `json:"dateStart"`
	DateEnd           string `json:"dateEnd"`
	Gender            string `json:"gender"`
	DescriptionSource string `json:"description_source"`
	Category          string `json:"category"`
	Image             string `json:"image"`
	UserID            string `json:"user_id"`
}

type ResponseCart struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	UserID         string `json:"user_id"`
	ProductID      string `json:"product_id"`
	Count          int    `json:"count"`
}

type ResponseOrder struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId"`
	CollectionName string `json:"collectionName"`
	Created        string `json:"created"`
	Updated        string `json:"updated"`
	UserID         string `json:"user_id"`
	ProductID      string `json:"product_id"`
	Count          int    `json:"count"`
}

type RequestAuth struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type RequestRegister struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type RequestCart struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

type RequestOrder struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Count     int    `json:"count"`
}

type RequestProject struct {
	Title             string `json:"title"`
	TypeProject       string `json:"typeProject"`
	UserID            string `json:"user_id"`
	DateStart         string `json:"dateStart"`
	DateEnd           string `json:"dateEnd"`
	Gender            string `json:"gender"`
	DescriptionSource string `json:"description_source"`
	Category          string `json:"category"`
}

// UserPatch carries the profile fields to change. Nil fields are not sent.
type UserPatch struct {
	Email        *string
	Firstname    *string
	Lastname     *string
	Secondname   *string
	DateBirthday *string
	Gender       *string
}

// Image is a file attached to a multipart request.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}
