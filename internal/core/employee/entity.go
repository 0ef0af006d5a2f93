package employee

// Employee は社員エンティティです。氏名とメールアドレスはいずれも未設定を許容します。
type Employee struct {
	ID        int64
	FirstName *string
	LastName  *string
	Email     *string
}

// Fields は作成・更新で置き換えられる社員の編集可能項目です。
type Fields struct {
	FirstName string
	LastName  string
	Email     *string
}
