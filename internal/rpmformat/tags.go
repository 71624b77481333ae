package rpmformat

// tagType is the per-entry type discriminator stored in a header index
// record. Values and meaning per spec §4.B: all integers big-endian,
// STRING ignores count, STRING_ARRAY/I18NSTRING read count consecutive
// NUL-terminated strings, BIN reads count raw bytes.
type tagType uint32

const (
	typeNull        tagType = 0
	typeChar        tagType = 1
	typeInt8        tagType = 2
	typeInt16       tagType = 3
	typeInt32       tagType = 4
	typeInt64       tagType = 5
	typeString      tagType = 6
	typeBin         tagType = 7
	typeStringArray tagType = 8
	typeI18NString  tagType = 9
)

// Numeric header tags this parser understands. Grounded on the tag table
// in be9511fe_chennqqi-go-rpmdb's pkg/package.go, itself the standard RPM
// tag numbering.
const (
	tagName          = 1000
	tagVersion       = 1001
	tagRelease       = 1002
	tagEpoch         = 1003
	tagSummary       = 1004
	tagDescription   = 1005
	tagBuildTime     = 1006
	tagBuildHost     = 1007
	tagSize          = 1009
	tagDistribution  = 1010
	tagVendor        = 1011
	tagLicense       = 1014
	tagPackager      = 1015
	tagGroup         = 1016
	tagURL           = 1020
	tagArch          = 1022
	tagOldFilenames  = 1027
	tagFileSizes     = 1028
	tagFileModes     = 1030
	tagFileMTimes    = 1034
	tagFileFlags     = 1037
	tagSourceRPM     = 1044
	tagArchiveSize   = 1046
	tagProvideName   = 1047
	tagRequireFlags  = 1048
	tagRequireName   = 1049
	tagRequireVer    = 1050
	tagConflictFlags = 1053
	tagConflictName  = 1054
	tagConflictVer   = 1055

	tagChangelogTime = 1080
	tagChangelogName = 1081
	tagChangelogText = 1082

	tagObsoleteName  = 1090
	tagProvideFlags  = 1112
	tagProvideVer    = 1113
	tagObsoleteFlags = 1114
	tagObsoleteVer   = 1115
	tagDirIndexes    = 1116
	tagBaseNames     = 1117
	tagDirNames      = 1118

	tagDistURL = 1123

	tagDistTag = 1155

	tagRecommendName = 5046
	tagRecommendVer  = 5047
	tagRecommendFlag = 5048
	tagSuggestName   = 5049
	tagSuggestVer    = 5050
	tagSuggestFlag   = 5051
	tagSupplementNam = 5052
	tagSupplementVer = 5053
	tagSupplementFlg = 5054
	tagEnhanceName   = 5055
	tagEnhanceVer    = 5056
	tagEnhanceFlag   = 5057
)

// RPMSENSE_* flag bits, applied to {Require,Provide,Conflict,Obsolete}Flags.
const (
	senseLess    = 0x02
	senseGreater = 0x04
	senseEqual   = 0x08
	sensePreReq  = 0x40
)

// RPMFILE_GHOST marks a ghost (not-packaged) file entry.
const fileFlagGhost = 1 << 6

// S_IFMT/S_IFDIR from the file mode word, used to classify dir entries.
const (
	modeFmtMask = 0xF000
	modeDir     = 0x4000
)
