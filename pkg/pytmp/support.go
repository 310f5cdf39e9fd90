package pytmp

// Names exported by the runtime support header. Generated code assumes
// exactly this contract; SupportHeaderVersion changes whenever it does.
const (
	SupportHeader        = "<tmppy/tmppy.h>"
	SupportHeaderVersion = 1

	// List containers, one per element kind.
	TypeListName  = "List"
	Int64ListName = "Int64List"
	BoolListName  = "BoolList"

	// Concatenation metafunctions over the matching containers.
	TypeListConcatName  = "TypeListConcat"
	Int64ListConcatName = "Int64ListConcat"
	BoolListConcatName  = "BoolListConcat"

	// StringHolder carries a string literal as a character pack.
	StringHolderName = "StringHolder"

	// Instantiation-forcing helpers, part of the v1 contract even
	// though current lowering never references them.
	AlwaysTrueFromTypeName  = "AlwaysTrueFromType"
	AlwaysTrueFromInt64Name = "AlwaysTrueFromInt64"
	AlwaysTrueFromBoolName  = "AlwaysTrueFromBool"
	Select1stTypeName       = "Select1stType"
	Select1stInt64Name      = "Select1stInt64"
	Select1stBoolName       = "Select1stBool"
)
